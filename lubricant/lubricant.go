// Package lubricant lists, creates and updates lubricant products.
package lubricant

import (
	"time"

	"github.com/theplant/pagequery"
	"github.com/theplant/pagequery/filter"
)

type ProductType string

const (
	ProductTypeOil    ProductType = "OIL"
	ProductTypeGrease ProductType = "GREASE"
	ProductTypeFluid  ProductType = "FLUID"
)

type Lubricant struct {
	ID          string      `gorm:"primaryKey;size:36;not null;" json:"id"`
	ProductType ProductType `gorm:"size:16;not null;" json:"productType"`
	Model       string      `gorm:"size:255;not null;" json:"model"`
	Brand       string      `gorm:"size:255;not null;index;" json:"brand"`
	Viscosity   string      `gorm:"size:255;not null;" json:"viscosity"`
	CreatedAt   time.Time   `gorm:"not null;" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"not null;" json:"updatedAt"`
}

func (Lubricant) TableName() string { return "lubricant" }

const (
	SortModelAsc      pagequery.SortDirective = "model_ASC"
	SortModelDesc     pagequery.SortDirective = "model_DESC"
	SortBrandAsc      pagequery.SortDirective = "brand_ASC"
	SortBrandDesc     pagequery.SortDirective = "brand_DESC"
	SortViscosityAsc  pagequery.SortDirective = "viscosity_ASC"
	SortViscosityDesc pagequery.SortDirective = "viscosity_DESC"
)

var Schema = &pagequery.Schema{
	Name: "lubricant",
	Sorts: map[pagequery.SortDirective]pagequery.Order{
		SortModelAsc:      {Field: "Model", Direction: pagequery.OrderDirectionAsc},
		SortModelDesc:     {Field: "Model", Direction: pagequery.OrderDirectionDesc},
		SortBrandAsc:      {Field: "Brand", Direction: pagequery.OrderDirectionAsc},
		SortBrandDesc:     {Field: "Brand", Direction: pagequery.OrderDirectionDesc},
		SortViscosityAsc:  {Field: "Viscosity", Direction: pagequery.OrderDirectionAsc},
		SortViscosityDesc: {Field: "Viscosity", Direction: pagequery.OrderDirectionDesc},
	},
	PrimaryOrderBy: []pagequery.Order{{Field: "ID", Direction: pagequery.OrderDirectionAsc}},
}

type Filter struct {
	ID        *filter.ID     `json:"id"`
	Model     *filter.String `json:"model"`
	Brand     *filter.String `json:"brand"`
	Viscosity *filter.String `json:"viscosity"`
}

type PaginateArgs = pagequery.PaginateRequest[Filter]

type CreateInput struct {
	ProductType *ProductType `json:"productType" validate:"omitempty,oneof=OIL GREASE FLUID"`
	Model       string       `json:"model" validate:"required,max=255"`
	Brand       string       `json:"brand" validate:"required,max=255"`
	Viscosity   string       `json:"viscosity" validate:"required,max=255"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	ProductType *ProductType `json:"productType" validate:"omitempty,oneof=OIL GREASE FLUID"`
	Model       *string      `json:"model" validate:"omitempty,max=255"`
	Brand       *string      `json:"brand" validate:"omitempty,max=255"`
	Viscosity   *string      `json:"viscosity" validate:"omitempty,max=255"`
}
