package service

import (
	"context"
	"fmt"

	"invoicable/internal/billing"
	"invoicable/internal/registry"
	"invoicable/internal/repository"

	"github.com/google/uuid"
)

// Record type discriminators used in polymorphic references.
const (
	RecordTypeCustomer = "customer"
	RecordTypeProduct  = "product"
)

// RegisterRecords wires the built-in record types into the registry.
// Callers embedding this library register their own types the same way.
func RegisterRecords(reg *registry.Registry, customers repository.CustomerRepository, products repository.ProductRepository) {
	reg.Register(RecordTypeCustomer, func(ctx context.Context, id string) (any, error) {
		recordID, err := parseRecordID(RecordTypeCustomer, id)
		if err != nil {
			return nil, err
		}
		customer, err := customers.FindByID(ctx, recordID)
		if err != nil {
			return nil, recordLookupError(RecordTypeCustomer, id, err)
		}
		return customer, nil
	})

	reg.Register(RecordTypeProduct, func(ctx context.Context, id string) (any, error) {
		recordID, err := parseRecordID(RecordTypeProduct, id)
		if err != nil {
			return nil, err
		}
		product, err := products.FindByID(ctx, recordID)
		if err != nil {
			return nil, recordLookupError(RecordTypeProduct, id, err)
		}
		return product, nil
	})
}

func parseRecordID(typeName, id string) (uuid.UUID, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", typeName, id, err)
	}
	return recordID, nil
}

func recordLookupError(typeName, id string, err error) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s %q: %w", typeName, id, billing.ErrNotFound)
	}
	return &billing.PersistenceError{Op: "resolve " + typeName, Err: err}
}
