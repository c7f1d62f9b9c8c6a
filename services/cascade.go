// ABOUTME: Company delete saga: detach every contact, then delete the company
// ABOUTME: Failed steps trigger compensation that re-attaches detached contacts
package services

import (
	"context"
	"fmt"

	"github.com/harperreed/crmdesk/models"
	"go.uber.org/zap"
)

// sagaStep is one forward action with its undo.
type sagaStep struct {
	name string
	do   func(context.Context) error
	undo func(context.Context) error
}

// runSaga executes steps in order. On failure it undoes completed steps in
// reverse and reports the failed step. Compensation runs on a context that
// ignores cancellation of the caller's context.
func runSaga(ctx context.Context, name string, steps []sagaStep, logger *zap.Logger) error {
	done := make([]sagaStep, 0, len(steps))
	for _, step := range steps {
		if err := step.do(ctx); err != nil {
			logger.Warn("saga step failed", zap.String("saga", name), zap.String("step", step.name), zap.Error(err))
			cerr := &CascadeError{Saga: name, Step: step.name, Err: err}

			undoCtx := context.WithoutCancel(ctx)
			for i := len(done) - 1; i >= 0; i-- {
				if done[i].undo == nil {
					cerr.Compensated++
					continue
				}
				if uerr := done[i].undo(undoCtx); uerr != nil {
					logger.Error("saga compensation failed", zap.String("saga", name), zap.String("step", done[i].name), zap.Error(uerr))
					cerr.CompensationErr = uerr
					return cerr
				}
				cerr.Compensated++
			}
			return cerr
		}
		done = append(done, step)
	}
	return nil
}

// CompanyCascade deletes a company after clearing the company reference of
// each of its contacts, one at a time.
type CompanyCascade struct {
	companies *CompanyService
	contacts  *ContactService
	logger    *zap.Logger
}

func NewCompanyCascade(companies *CompanyService, contacts *ContactService, logger *zap.Logger) *CompanyCascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyCascade{companies: companies, contacts: contacts, logger: logger.Named("cascade")}
}

// Delete runs the saga over dependents. A nil dependents slice is looked up
// from the backend first.
func (c *CompanyCascade) Delete(ctx context.Context, companyID int, dependents []models.Contact) error {
	if dependents == nil {
		found, err := c.contacts.ByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		dependents = found
	}

	steps := make([]sagaStep, 0, len(dependents)+1)
	for _, contact := range dependents {
		if contact.CompanyID != companyID {
			continue
		}
		original := contact
		detached := contact
		detached.CompanyID = 0
		detached.CompanyName = ""

		steps = append(steps, sagaStep{
			name: fmt.Sprintf("detach contact %d", contact.ID),
			do: func(ctx context.Context) error {
				_, err := c.contacts.Update(ctx, original.ID, detached)
				return err
			},
			undo: func(ctx context.Context) error {
				_, err := c.contacts.Update(ctx, original.ID, original)
				return err
			},
		})
	}
	steps = append(steps, sagaStep{
		name: fmt.Sprintf("delete company %d", companyID),
		do: func(ctx context.Context) error {
			return c.companies.Delete(ctx, companyID)
		},
	})

	if err := runSaga(ctx, "delete company", steps, c.logger); err != nil {
		return err
	}
	c.logger.Info("company deleted with contacts detached",
		zap.Int("company_id", companyID),
		zap.Int("detached", len(steps)-1),
	)
	return nil
}
