package service

import (
	"context"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
)

// configuratorBackend fuses the catalog and submit services into the
// single collaborator the session engine talks to.
type configuratorBackend struct {
	CatalogService
	submit SubmitService
}

func NewConfiguratorBackend(catalog CatalogService, submit SubmitService) configurator.Collaborator {
	return &configuratorBackend{
		CatalogService: catalog,
		submit:         submit,
	}
}

func (b *configuratorBackend) Submit(ctx context.Context, payload *configurator.SubmissionPayload) error {
	return b.submit.Submit(ctx, payload)
}
