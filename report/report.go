// Package report lists, creates and updates lubricant analysis reports.
package report

import (
	"time"

	"github.com/theplant/pagequery"
	"github.com/theplant/pagequery/filter"
)

type Report struct {
	ID          string    `gorm:"primaryKey;size:36;not null;" json:"id"`
	FormNumber  *string   `gorm:"size:255;uniqueIndex;" json:"formNumber"`
	LubricantID string    `gorm:"size:36;not null;index;" json:"lubricantId"`
	Customer    string    `gorm:"size:255;not null;" json:"customer"`
	Equipment   string    `gorm:"size:255;not null;" json:"equipment"`
	Notes       string    `gorm:"type:text;" json:"notes"`
	CreatedAt   time.Time `gorm:"not null;" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;" json:"updatedAt"`
}

func (Report) TableName() string { return "report" }

const (
	SortFormNumberAsc  pagequery.SortDirective = "formNumber_ASC"
	SortFormNumberDesc pagequery.SortDirective = "formNumber_DESC"
	SortCustomerAsc    pagequery.SortDirective = "customer_ASC"
	SortCustomerDesc   pagequery.SortDirective = "customer_DESC"
	SortCreatedAtAsc   pagequery.SortDirective = "createdAt_ASC"
	SortCreatedAtDesc  pagequery.SortDirective = "createdAt_DESC"
)

var Schema = &pagequery.Schema{
	Name: "report",
	Sorts: map[pagequery.SortDirective]pagequery.Order{
		SortFormNumberAsc:  {Field: "FormNumber", Direction: pagequery.OrderDirectionAsc},
		SortFormNumberDesc: {Field: "FormNumber", Direction: pagequery.OrderDirectionDesc},
		SortCustomerAsc:    {Field: "Customer", Direction: pagequery.OrderDirectionAsc},
		SortCustomerDesc:   {Field: "Customer", Direction: pagequery.OrderDirectionDesc},
		SortCreatedAtAsc:   {Field: "CreatedAt", Direction: pagequery.OrderDirectionAsc},
		SortCreatedAtDesc:  {Field: "CreatedAt", Direction: pagequery.OrderDirectionDesc},
	},
	PrimaryOrderBy: []pagequery.Order{{Field: "ID", Direction: pagequery.OrderDirectionAsc}},
}

type Filter struct {
	ID          *filter.ID     `json:"id"`
	LubricantID *filter.ID     `json:"lubricantId"`
	FormNumber  *filter.String `json:"formNumber"`
	Customer    *filter.String `json:"customer"`
	Equipment   *filter.String `json:"equipment"`
}

type PaginateArgs = pagequery.PaginateRequest[Filter]

type CreateInput struct {
	FormNumber  *string `json:"formNumber" validate:"omitempty,max=255"`
	LubricantID string  `json:"lubricantId" validate:"required"`
	Customer    string  `json:"customer" validate:"required,max=255"`
	Equipment   string  `json:"equipment" validate:"required,max=255"`
	Notes       string  `json:"notes"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	FormNumber  *string `json:"formNumber" validate:"omitempty,max=255"`
	LubricantID *string `json:"lubricantId" validate:"omitempty,min=1"`
	Customer    *string `json:"customer" validate:"omitempty,max=255"`
	Equipment   *string `json:"equipment" validate:"omitempty,max=255"`
	Notes       *string `json:"notes"`
}
