// Package ledger owns the order financial tuple (total, advance, balance,
// payment status) and the rule keeping it consistent. Every mutation runs
// in one transaction together with its audit entry: either both commit or
// neither does.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/tailorledger/internal/audit"
	"github.com/diewo77/tailorledger/internal/models"
	"github.com/diewo77/tailorledger/internal/validation"
)

// FallbackItemName is used when the order's category cannot be resolved.
const FallbackItemName = "Custom Tailoring"

type Engine struct {
	db    *gorm.DB
	audit *audit.Recorder
}

func New(db *gorm.DB, rec *audit.Recorder) *Engine {
	return &Engine{db: db, audit: rec}
}

// Round2 rounds a currency amount to 2 decimals.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// PaymentStatusFor derives the payment status from the rounded amounts:
//
//	total <= 0            -> Pending
//	balance <= 0          -> Paid
//	advance > 0           -> Partial
//	otherwise             -> Pending
func PaymentStatusFor(total, advance, balance float64) string {
	if total <= 0 {
		return models.PaymentPending
	}
	if balance <= 0 {
		return models.PaymentPaid
	}
	if advance > 0 {
		return models.PaymentPartial
	}
	return models.PaymentPending
}

// FinancialUpdate is the input to ApplyFinancials. Total and Advance must
// already be parsed numbers (malformed text is a validation failure at the
// boundary, never silently coerced); optional fields are applied only when
// set.
type FinancialUpdate struct {
	Total        float64
	Advance      float64
	DeliveryDate *time.Time
	PaymentMode  string
	WorkStatus   string
}

// ApplyFinancials recomputes balance and payment status for one order and
// persists the result together with one audit entry. The order row is
// locked for the duration of the transaction so two simultaneous updates
// cannot lose writes.
func (e *Engine) ApplyFinancials(ctx context.Context, actorID, orderID uint, in FinancialUpdate) (models.Order, error) {
	if v := validateAmounts(in.Total, in.Advance); !v.Empty() {
		return models.Order{}, &ValidationError{Violations: v}
	}

	var order models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		order.TotalAmt = Round2(in.Total)
		order.Advance = Round2(in.Advance)
		order.Balance = Round2(order.TotalAmt - order.Advance)
		order.PaymentStatus = PaymentStatusFor(order.TotalAmt, order.Advance, order.Balance)
		if in.WorkStatus != "" {
			order.WorkStatus = in.WorkStatus
		}
		if in.DeliveryDate != nil {
			order.DeliveryDate = in.DeliveryDate
		}
		if in.PaymentMode != "" {
			order.PaymentMode = in.PaymentMode
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Updated Order #%d: Status=%s, Paid=%.2f/%.2f", order.ID, order.PaymentStatus, order.Advance, order.TotalAmt)
		return e.audit.Record(tx, actorID, models.ActionEdit, "Order", order.ID, msg)
	})
	if err != nil {
		return models.Order{}, wrap("apply financials", err)
	}
	return order, nil
}

// CreateInput bundles the atomic measurement + order creation.
type CreateInput struct {
	CustomerID uint
	CategoryID uint
	Values     []models.MeasurementValue
	Remarks    string

	StartDate    *time.Time
	DeliveryDate *time.Time
	WorkStatus   string
	Notes        string
	Total        float64
	Advance      float64
	PaymentMode  string
}

// CreateOrderWithMeasurement persists the measurement, then the order whose
// first line item is named after the measurement's category, then exactly
// one audit entry for the order creation. All three share one transaction:
// either everything exists afterwards or nothing does.
func (e *Engine) CreateOrderWithMeasurement(ctx context.Context, actorID uint, in CreateInput) (models.Measurement, models.Order, error) {
	v := validation.Violations{}
	if in.CategoryID == 0 {
		v["category_id"] = "required"
	}
	if len(in.Values) == 0 {
		v["measurements"] = "required"
	}
	for k, code := range validateAmounts(in.Total, in.Advance) {
		v[k] = code
	}
	if !v.Empty() {
		return models.Measurement{}, models.Order{}, &ValidationError{Violations: v}
	}

	var meas models.Measurement
	var order models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		meas = models.Measurement{
			CustomerID: in.CustomerID,
			CategoryID: in.CategoryID,
			Values:     in.Values,
			Remarks:    in.Remarks,
			IsActive:   true,
		}
		if err := tx.Create(&meas).Error; err != nil {
			return err
		}

		itemName := FallbackItemName
		var cat models.Category
		if err := tx.First(&cat, in.CategoryID).Error; err == nil {
			itemName = cat.Name
		}

		total := Round2(in.Total)
		advance := Round2(in.Advance)
		balance := Round2(total - advance)
		workStatus := in.WorkStatus
		if workStatus == "" {
			workStatus = models.WorkWorking
		}
		order = models.Order{
			CustomerID:    in.CustomerID,
			Items:         []models.LineItem{{Name: itemName, Qty: 1}},
			StartDate:     in.StartDate,
			DeliveryDate:  in.DeliveryDate,
			WorkStatus:    workStatus,
			PaymentStatus: PaymentStatusFor(total, advance, balance),
			TotalAmt:      total,
			Advance:       advance,
			Balance:       balance,
			PaymentMode:   in.PaymentMode,
			Notes:         in.Notes,
			CreatedBy:     actorID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Created Order #%d for %s (Items: %s)", order.ID, customer.Name, itemName)
		return e.audit.Record(tx, actorID, models.ActionCreate, "Order", order.ID, msg)
	})
	if err != nil {
		return models.Measurement{}, models.Order{}, wrap("create order with measurement", err)
	}
	return meas, order, nil
}

// DeleteOrder removes one order and records the deletion. The measurement,
// if any, is kept.
func (e *Engine) DeleteOrder(ctx context.Context, actorID, orderID uint) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Customer").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("Deleted Order #%d for %s", order.ID, order.Customer.Name)
		return e.audit.Record(tx, actorID, models.ActionDelete, "Order", order.ID, msg)
	})
	return wrap("delete order", err)
}

// DeleteCustomer removes a customer with all their measurements, orders and
// reminders, recording one audit entry for the cascade.
func (e *Engine) DeleteCustomer(ctx context.Context, actorID, customerID uint) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Measurement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&customer).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("Deleted Customer: %s", customer.Name)
		return e.audit.Record(tx, actorID, models.ActionDelete, "Customer", customer.ID, msg)
	})
	return wrap("delete customer", err)
}

// DeleteCategory refuses to delete a category still referenced by
// measurements.
func (e *Engine) DeleteCategory(ctx context.Context, actorID, categoryID uint) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.First(&cat, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var used int64
		if err := tx.Model(&models.Measurement{}).Where("category_id = ?", categoryID).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return &CategoryInUseError{CategoryID: cat.ID, Name: cat.Name, UsageCount: used}
		}
		if err := tx.Delete(&cat).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("Deleted Category: %s", cat.Name)
		return e.audit.Record(tx, actorID, models.ActionDelete, "Category", cat.ID, msg)
	})
	return wrap("delete category", err)
}

func validateAmounts(total, advance float64) validation.Violations {
	v := validation.Violations{}
	if total < 0 {
		v["total_amt"] = "must_not_be_negative"
	}
	if advance < 0 {
		v["advance"] = "must_not_be_negative"
	}
	return v
}

// wrap classifies transaction errors: domain errors pass through untouched,
// anything else is a store-level consistency fault.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var cue *CategoryInUseError
	if errors.Is(err, ErrNotFound) || errors.As(err, &ve) || errors.As(err, &cue) {
		return err
	}
	return &ConsistencyError{Op: op, Err: err}
}
