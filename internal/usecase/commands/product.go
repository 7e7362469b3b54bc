package commands

import (
	"context"
	"log/slog"

	"affiliate-notify/internal/domain/product"
	reqdto "affiliate-notify/internal/handler/dto/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidProduct = errs.New("invalid product")

type ProductResult struct {
	ProductID uuid.UUID
	Match     MatchResult
}

// ProductCommands manages the curated catalog. Every create or update is
// followed by a match run so waiting requests hear about the product.
type ProductCommands interface {
	Create(ctx context.Context, req reqdto.CreateProductRequest, curatorID uuid.UUID) (*ProductResult, error)
	Update(ctx context.Context, id uuid.UUID, req reqdto.UpdateProductRequest) (*ProductResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordView(ctx context.Context, id uuid.UUID) error
	RecordClick(ctx context.Context, id uuid.UUID) (string, error)
}

type productCommandsImpl struct {
	uow    shared.UnitOfWork
	engine MatchEngine
	clock  clock.Clock
}

func NewProductCommands(uow shared.UnitOfWork, engine MatchEngine, clk clock.Clock) ProductCommands {
	return &productCommandsImpl{
		uow:    uow,
		engine: engine,
		clock:  clk,
	}
}

func (c *productCommandsImpl) Create(ctx context.Context, req reqdto.CreateProductRequest, curatorID uuid.UUID) (*ProductResult, error) {
	details, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidProduct)
	}
	item, err := product.NewProduct(details, &curatorID, c.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidProduct)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Create(ctx, tx.DB(), item)
	})
	if err != nil {
		return nil, err
	}

	return c.afterWrite(ctx, item.ID()), nil
}

func (c *productCommandsImpl) Update(ctx context.Context, id uuid.UUID, req reqdto.UpdateProductRequest) (*ProductResult, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		item, err := tx.Reads().ProductForUpdate(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		details, err := req.ToDomain(item)
		if err != nil {
			return errs.Mark(err, ErrInvalidProduct)
		}
		if err := item.Update(details, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidProduct)
		}
		return tx.Products().Update(ctx, tx.DB(), item)
	})
	if err != nil {
		return nil, err
	}

	return c.afterWrite(ctx, id), nil
}

func (c *productCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Delete(ctx, tx.DB(), id)
	})
	if infra.IsKind(err, infra.KindNotFound) {
		return ErrProductNotFound
	}
	return err
}

func (c *productCommandsImpl) RecordView(ctx context.Context, id uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Products().RecordView(ctx, tx.DB(), id)
		return err
	})
	if infra.IsKind(err, infra.KindNotFound) {
		return ErrProductNotFound
	}
	return err
}

// RecordClick counts an outbound click and returns the affiliate link to
// redirect to.
func (c *productCommandsImpl) RecordClick(ctx context.Context, id uuid.UUID) (string, error) {
	var link string
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		l, err := tx.Products().RecordClick(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		link = l
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}
	return link, nil
}

// afterWrite fans the product out to waiting requests. The catalog write
// already succeeded, so a failing match run is only logged.
func (c *productCommandsImpl) afterWrite(ctx context.Context, id uuid.UUID) *ProductResult {
	result := &ProductResult{ProductID: id}
	match, err := c.engine.MatchProduct(ctx, id)
	if err != nil {
		slog.Warn("product match run failed", "product_id", id, "error", err.Error())
		return result
	}
	result.Match = *match
	return result
}
