package layout

// Entity is anything a Repository can key by its identity.
type Entity[ID comparable] interface {
	EntityID() ID
}

// Repository is an identity keyed store. Saving an entity whose identity is
// already present replaces it.
type Repository[ID comparable, E Entity[ID]] struct {
	entities map[ID]E
}

func NewRepository[ID comparable, E Entity[ID]]() *Repository[ID, E] {
	return &Repository[ID, E]{entities: make(map[ID]E)}
}

func (r *Repository[ID, E]) Save(entity E) {
	r.entities[entity.EntityID()] = entity
}

func (r *Repository[ID, E]) FindByID(id ID) (E, bool) {
	e, ok := r.entities[id]
	return e, ok
}

func (r *Repository[ID, E]) Len() int {
	return len(r.entities)
}

type TypeEntryRepository = Repository[TypeEntryID, TypeEntry]

type VariableDeclarationEntryRepository = Repository[VariableDeclarationEntryID, VariableDeclarationEntry]

func NewTypeEntryRepository() *TypeEntryRepository {
	return NewRepository[TypeEntryID, TypeEntry]()
}

func NewVariableDeclarationEntryRepository() *VariableDeclarationEntryRepository {
	return NewRepository[VariableDeclarationEntryID, VariableDeclarationEntry]()
}
