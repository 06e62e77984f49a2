package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/theplant/pagequery"
)

// Lubricants checks that a report refers to a stored lubricant.
type Lubricants interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo       pagequery.Repository[Report]
	lubricants Lubricants
	paginator  pagequery.Paginator[Report, Filter]
	now        func() time.Time
}

func NewService(repo pagequery.Repository[Report], lubricants Lubricants, defaultPerPage, maxPerPage int) *Service {
	if lubricants == nil {
		panic("lubricants must be set")
	}
	return &Service{
		repo:       repo,
		lubricants: lubricants,
		paginator:  pagequery.New(Schema, repo, pagequery.EnsureLimits[Report, Filter](defaultPerPage, maxPerPage)),
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context, args *PaginateArgs) (*pagequery.PaginatedResponse[Report], error) {
	return s.paginator.Paginate(ctx, args)
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*pagequery.MutationResponse[Report], error) {
	if in == nil {
		return pagequery.MutationFailed[Report]("input is required"), nil
	}
	msgs, err := pagequery.ValidateInput(in)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return pagequery.MutationFailed[Report](msgs...), nil
	}
	if rsp, err := s.checkLubricant(ctx, in.LubricantID); rsp != nil || err != nil {
		return rsp, err
	}

	now := s.now()
	record := &Report{
		ID:          uuid.NewString(),
		FormNumber:  in.FormNumber,
		LubricantID: in.LubricantID,
		Customer:    in.Customer,
		Equipment:   in.Equipment,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return mutationFailure(err)
	}
	return pagequery.MutationSucceeded(record), nil
}

func (s *Service) Update(ctx context.Context, id string, in *UpdateInput) (*pagequery.MutationResponse[Report], error) {
	if id == "" {
		return pagequery.MutationFailed[Report]("id is required"), nil
	}
	if in == nil {
		return pagequery.MutationFailed[Report]("input is required"), nil
	}
	msgs, err := pagequery.ValidateInput(in)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return pagequery.MutationFailed[Report](msgs...), nil
	}

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return mutationFailure(err)
	}
	if in.LubricantID != nil && *in.LubricantID != record.LubricantID {
		if rsp, err := s.checkLubricant(ctx, *in.LubricantID); rsp != nil || err != nil {
			return rsp, err
		}
		record.LubricantID = *in.LubricantID
	}
	if in.FormNumber != nil {
		record.FormNumber = in.FormNumber
	}
	if in.Customer != nil {
		record.Customer = *in.Customer
	}
	if in.Equipment != nil {
		record.Equipment = *in.Equipment
	}
	if in.Notes != nil {
		record.Notes = *in.Notes
	}
	record.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, record); err != nil {
		return mutationFailure(err)
	}
	return pagequery.MutationSucceeded(record), nil
}

func (s *Service) checkLubricant(ctx context.Context, id string) (*pagequery.MutationResponse[Report], error) {
	ok, err := s.lubricants.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return pagequery.MutationFailed[Report]("lubricantId does not exist"), nil
	}
	return nil, nil
}

// formNumber is the only unique column besides the primary key.
func mutationFailure(err error) (*pagequery.MutationResponse[Report], error) {
	if errors.Is(err, pagequery.ErrDuplicate) {
		return pagequery.MutationFailed[Report]("formNumber already exists"), nil
	}
	return pagequery.MutationFailure[Report](err)
}
