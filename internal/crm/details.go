package crm

import (
	"context"
	"strings"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// AddPhone stores a phone number of a contact. The type (mobile, work, ...) is optional.
func (s *Service) AddPhone(ctx context.Context, id int64, input api.Phone) (model.Phone, error) {
	input.Number = strings.TrimSpace(input.Number)
	if err := check(input); err != nil {
		return model.Phone{}, err
	}
	phone := model.Phone{ContactId: id, Number: input.Number, Type: optional(&input.Type)}
	err := s.write(ctx, "add_phone", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		phone.Id, err = tx.InsertPhone(ctx, id, phone.Number, phone.Type)
		return err
	})
	if err != nil {
		return model.Phone{}, err
	}
	return phone, nil
}

// AddPet adds a pet to the contact. The name must not be blank.
func (s *Service) AddPet(ctx context.Context, id int64, name string) (model.Pet, error) {
	pet := model.Pet{ContactId: id, Name: strings.TrimSpace(name)}
	if pet.Name == "" {
		return model.Pet{}, ErrRequired
	}
	err := s.write(ctx, "add_pet", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		pet.Id, err = tx.InsertPet(ctx, id, pet.Name)
		return err
	})
	if err != nil {
		return model.Pet{}, err
	}
	return pet, nil
}

// AddPartner adds a partner to the contact. The name must not be blank.
func (s *Service) AddPartner(ctx context.Context, id int64, name string) (model.Partner, error) {
	partner := model.Partner{ContactId: id, Name: strings.TrimSpace(name)}
	if partner.Name == "" {
		return model.Partner{}, ErrRequired
	}
	err := s.write(ctx, "add_partner", func(tx *store.Tx) error {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		partner.Id, err = tx.InsertPartner(ctx, id, partner.Name)
		return err
	})
	if err != nil {
		return model.Partner{}, err
	}
	return partner, nil
}

// AddRelationship relates two different contacts, for example as "sibling" or "colleague".
func (s *Service) AddRelationship(ctx context.Context, id int64, input api.Relationship) (model.Relationship, error) {
	input.Type = strings.TrimSpace(input.Type)
	if err := check(input); err != nil {
		return model.Relationship{}, err
	}
	if input.OtherId == id {
		return model.Relationship{}, ErrSelfRelationship
	}
	relationship := model.Relationship{Contact1Id: id, Contact2Id: input.OtherId, Type: input.Type}
	err := s.write(ctx, "add_relationship", func(tx *store.Tx) error {
		for _, contactID := range []int64{id, input.OtherId} {
			if err := exists(ctx, tx, contactID); err != nil {
				return err
			}
		}
		var err error
		relationship.Id, err = tx.InsertRelationship(ctx, id, input.OtherId, input.Type)
		return err
	})
	if err != nil {
		return model.Relationship{}, err
	}
	return relationship, nil
}

// RemoveRelationship removes the relationships between two contacts regardless of their direction.
func (s *Service) RemoveRelationship(ctx context.Context, id, otherID int64) error {
	return s.write(ctx, "remove_relationship", func(tx *store.Tx) error {
		removed, err := tx.DeleteRelationship(ctx, id, otherID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return ErrRelationshipUnset
		}
		return nil
	})
}

// Relationships lists the contacts related to a contact.
func (s *Service) Relationships(ctx context.Context, id int64) ([]model.RelatedContact, error) {
	if _, err := s.store.Contact(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Relationships(ctx, id)
}

// RelationshipGraph returns all contacts as nodes and all relationships as edges.
func (s *Service) RelationshipGraph(ctx context.Context) (model.Graph, error) {
	contacts, err := s.store.ListContacts(ctx, "")
	if err != nil {
		return model.Graph{}, err
	}
	relationships, err := s.store.AllRelationships(ctx)
	if err != nil {
		return model.Graph{}, err
	}
	graph := model.Graph{
		Nodes: make([]model.GraphNode, 0, len(contacts)),
		Edges: make([]model.GraphEdge, 0, len(relationships)),
	}
	for _, c := range contacts {
		graph.Nodes = append(graph.Nodes, model.GraphNode{Id: c.Id, Name: c.FullName()})
	}
	for _, r := range relationships {
		graph.Edges = append(graph.Edges, model.GraphEdge{From: r.Contact1Id, To: r.Contact2Id, Type: r.Type})
	}
	return graph, nil
}
