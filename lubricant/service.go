package lubricant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/pagequery"
)

type Service struct {
	repo      pagequery.Repository[Lubricant]
	paginator pagequery.Paginator[Lubricant, Filter]
	now       func() time.Time
}

func NewService(repo pagequery.Repository[Lubricant], defaultPerPage, maxPerPage int) *Service {
	return &Service{
		repo:      repo,
		paginator: pagequery.New(Schema, repo, pagequery.EnsureLimits[Lubricant, Filter](defaultPerPage, maxPerPage)),
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, args *PaginateArgs) (*pagequery.PaginatedResponse[Lubricant], error) {
	return s.paginator.Paginate(ctx, args)
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*pagequery.MutationResponse[Lubricant], error) {
	if in == nil {
		return pagequery.MutationFailed[Lubricant]("input is required"), nil
	}
	msgs, err := pagequery.ValidateInput(in)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return pagequery.MutationFailed[Lubricant](msgs...), nil
	}

	now := s.now()
	record := &Lubricant{
		ID:          uuid.NewString(),
		ProductType: lo.FromPtrOr(in.ProductType, ProductTypeOil),
		Model:       in.Model,
		Brand:       in.Brand,
		Viscosity:   in.Viscosity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return pagequery.MutationFailure[Lubricant](err)
	}
	return pagequery.MutationSucceeded(record), nil
}

func (s *Service) Update(ctx context.Context, id string, in *UpdateInput) (*pagequery.MutationResponse[Lubricant], error) {
	if id == "" {
		return pagequery.MutationFailed[Lubricant]("id is required"), nil
	}
	if in == nil {
		return pagequery.MutationFailed[Lubricant]("input is required"), nil
	}
	msgs, err := pagequery.ValidateInput(in)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return pagequery.MutationFailed[Lubricant](msgs...), nil
	}

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return pagequery.MutationFailure[Lubricant](err)
	}
	if in.ProductType != nil {
		record.ProductType = *in.ProductType
	}
	if in.Model != nil {
		record.Model = *in.Model
	}
	if in.Brand != nil {
		record.Brand = *in.Brand
	}
	if in.Viscosity != nil {
		record.Viscosity = *in.Viscosity
	}
	record.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, record); err != nil {
		return pagequery.MutationFailure[Lubricant](err)
	}
	return pagequery.MutationSucceeded(record), nil
}

// Exists reports whether a lubricant with the given id is stored.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	if errors.Is(err, pagequery.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pagequery.NewStorageError(err)
	}
	return true, nil
}
