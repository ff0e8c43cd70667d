package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/config"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/model"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService covers the non-order stock operations: purchase entries (the
// only way lots are created), economato refills from general stock, and the
// read-only snapshots that feed dashboards.
type StockService interface {
	Replenish(ctx context.Context, req dto.ReplenishStockRequest) (*dto.ReplenishStockResponse, error)
	// TransferToArea moves quantity from the general warehouse into one
	// area's reserve, atomically: FIFO lot consumption on one side, reserve
	// credit on the other, one audit entry per side.
	TransferToArea(ctx context.Context, areaID uuid.UUID, req dto.AreaTransferRequest) error
	Availability(ctx context.Context, productID, orgID uuid.UUID) (*dto.AvailabilityResponse, error)
	History(ctx context.Context, productID, orgID uuid.UUID, page, limit int) (*dto.HistoryResponse, error)
}

type stockService struct {
	cfg       *config.Config
	stocks    repository.StockRepository
	areasRepo repository.AreaRepository
	products  repository.ProductRepository
	history   repository.HistoryRepository
	ledger    StockLedger
	areas     AreaInventory
}

func NewStockService(
	cfg *config.Config,
	stocks repository.StockRepository,
	areasRepo repository.AreaRepository,
	products repository.ProductRepository,
	history repository.HistoryRepository,
	ledger StockLedger,
	areas AreaInventory,
) StockService {
	return &stockService{
		cfg:       cfg,
		stocks:    stocks,
		areasRepo: areasRepo,
		products:  products,
		history:   history,
		ledger:    ledger,
		areas:     areas,
	}
}

func (s *stockService) Replenish(ctx context.Context, req dto.ReplenishStockRequest) (*dto.ReplenishStockResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization_id: %w", err)
	}
	if !req.Quantity.IsPositive() {
		return nil, errors.New("quantity must be positive")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	var resp dto.ReplenishStockResponse
	txErr := runTx(ctx, s.stocks.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		lot, err := s.ledger.ReplenishTx(tx, productID, orgID, req.Quantity, req.UnitCost, req.UnitSaleCost)
		if err != nil {
			return err
		}
		lotRef := lot.ID
		entry := &model.StockHistory{
			Type:           model.HistoryEntrance,
			Quantity:       req.Quantity,
			UnitPrice:      req.UnitCost,
			ProductID:      productID,
			ReferenceID:    &lotRef,
			OrganizationID: orgID,
			Note:           "purchase entry",
		}
		if err := s.history.CreateTx(tx, entry); err != nil {
			return err
		}
		resp.LotID = lot.ID.String()
		return nil
	})
	if txErr != nil {
		return nil, wrapTimeout("replenish stock", txErr)
	}

	total, err := s.ledger.PeekAvailable(ctx, productID, orgID)
	if err != nil {
		return nil, err
	}
	resp.TotalQuantity = total
	return &resp, nil
}

func (s *stockService) TransferToArea(ctx context.Context, areaID uuid.UUID, req dto.AreaTransferRequest) error {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product_id: %w", err)
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return fmt.Errorf("invalid organization_id: %w", err)
	}
	if !req.Quantity.IsPositive() {
		return errors.New("quantity must be positive")
	}
	if _, err := s.areasRepo.FindByID(ctx, areaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("area %s not found", areaID)
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout())
	defer cancel()

	txErr := runTx(ctx, s.stocks.DB(), s.cfg.LockTimeout(), func(tx *gorm.DB) error {
		deds, err := s.ledger.DeductTx(tx, productID, orgID, req.Quantity)
		if err != nil {
			return err
		}
		if err := s.areas.ReplenishTx(tx, areaID, productID, orgID, req.Quantity); err != nil {
			return err
		}

		// Both transfer entries share one reference so the pair reads as a
		// single movement in the trail.
		transferRef := uuid.New()
		unitCost := WeightedUnitCost(deds)
		out := &model.StockHistory{
			Type:           model.HistoryTransfer,
			Quantity:       req.Quantity,
			UnitPrice:      unitCost,
			ProductID:      productID,
			ReferenceID:    &transferRef,
			OrganizationID: orgID,
			Note:           "transfer to area",
		}
		if err := s.history.CreateTx(tx, out); err != nil {
			return err
		}
		in := &model.StockHistory{
			Type:           model.HistoryTransfer,
			Quantity:       req.Quantity,
			UnitPrice:      unitCost,
			ProductID:      productID,
			ReferenceID:    &transferRef,
			AreaID:         &areaID,
			OrganizationID: orgID,
			Note:           "transfer to area",
		}
		return s.history.CreateTx(tx, in)
	})
	return wrapTimeout("transfer to area", txErr)
}

func (s *stockService) Availability(ctx context.Context, productID, orgID uuid.UUID) (*dto.AvailabilityResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, err
	}
	general, err := s.ledger.PeekAvailable(ctx, productID, orgID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.areas.Holdings(ctx, productID, orgID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AvailabilityResponse{
		ProductID: productID.String(),
		General:   general,
		Total:     general,
	}
	for _, h := range holdings {
		resp.Areas = append(resp.Areas, dto.AreaAvailability{
			AreaID:   h.AreaID.String(),
			Quantity: h.Quantity,
		})
		resp.Total = resp.Total.Add(h.Quantity)
	}
	return resp, nil
}

func (s *stockService) History(ctx context.Context, productID, orgID uuid.UUID, page, limit int) (*dto.HistoryResponse, error) {
	entries, total, err := s.history.ListByProduct(ctx, productID, orgID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.HistoryResponse{
		Data:  make([]dto.HistoryEntry, 0, len(entries)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, e := range entries {
		item := dto.HistoryEntry{
			ID:        e.ID.String(),
			Type:      e.Type,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.AreaID != nil {
			v := e.AreaID.String()
			item.AreaID = &v
		}
		if e.ReferenceID != nil {
			v := e.ReferenceID.String()
			item.Reference = &v
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}
