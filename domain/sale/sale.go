package sale

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
)

// Milestone kinds emitted over a sale's lifetime.
type Milestone string

const (
	MilestoneCreation             Milestone = "creation"
	MilestoneSoftCap              Milestone = "softCap"
	MilestoneHardCap              Milestone = "hardCap"
	MilestoneAddedToWhitelist     Milestone = "addedToWhitelist"
	MilestoneRemovedFromWhitelist Milestone = "removedFromWhitelist"
	MilestoneCompletion           Milestone = "completion"
	MilestoneRefund               Milestone = "refund"
)

// EventData is the payload attached to sale milestone notifications.
type EventData struct {
	SaleHash domain.SaleHash `json:"saleHash"`
	Kind     Milestone       `json:"kind"`
}

// Definition holds the immutable parameters of a sale. Its content hash is
// the sale's identity, so two byte-identical definitions collide on id.
type Definition struct {
	Creator           domain.Address `json:"creator"`
	Name              string         `json:"name"`
	RequiresWhitelist bool           `json:"requiresWhitelist"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           time.Time      `json:"endDate"`
	SellSymbol        domain.Symbol  `json:"sellSymbol"`
	ReceiveSymbol     domain.Symbol  `json:"receiveSymbol"`
	Price             *big.Int       `json:"price"`
	SoftCap           *big.Int       `json:"softCap"`
	HardCap           *big.Int       `json:"hardCap"`
	UserLimit         *big.Int       `json:"userLimit"`
}

// Hash derives the sale id from the serialized definition.
func (d *Definition) Hash() (domain.SaleHash, error) {
	bs, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return domain.SaleHash(hexutil.Encode(crypto.Keccak256(bs))), nil
}

// Sale is the persisted sale record: the immutable definition plus the
// terminal marker set by CloseSale.
type Sale struct {
	Definition `json:"definition"`
	Hash       domain.SaleHash `json:"hash"`
	Finalized  bool            `json:"finalized"`
}

// Repo persists sales and their per-id sub-regions: sold supply, per-buyer
// cumulative amounts, participant set and whitelist set.
type Repo interface {
	Create(ctx ctx.Ctx, s *Sale) error
	FindOne(ctx ctx.Ctx, hash domain.SaleHash) (*Sale, error)
	FindAll(ctx ctx.Ctx) ([]*Sale, error)
	Has(ctx ctx.Ctx, hash domain.SaleHash) (bool, error)
	SetFinalized(ctx ctx.Ctx, hash domain.SaleHash) error

	Supply(ctx ctx.Ctx, hash domain.SaleHash) (*big.Int, error)
	SetSupply(ctx ctx.Ctx, hash domain.SaleHash, supply *big.Int) error

	PurchasedAmount(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address) (*big.Int, error)
	SetPurchasedAmount(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address, amount *big.Int) error

	AddParticipant(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address) error
	Participants(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error)

	AddToWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error
	RemoveFromWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error
	IsWhitelisted(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) (bool, error)
	Whitelisted(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error)
}

// UseCase is the crowdsale lifecycle and cap/whitelist/refund engine.
type UseCase interface {
	CreateSale(ctx ctx.Ctx, def Definition) (domain.SaleHash, error)
	IsSaleActive(ctx ctx.Ctx, hash domain.SaleHash) bool
	AddToWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error
	RemoveFromWhitelist(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) error
	Purchase(ctx ctx.Ctx, buyer domain.Address, hash domain.SaleHash, quoteSymbol domain.Symbol, quoteAmount *big.Int) error
	CloseSale(ctx ctx.Ctx, caller domain.Address, hash domain.SaleHash) error

	GetSales(ctx ctx.Ctx) ([]*Sale, error)
	GetSale(ctx ctx.Ctx, hash domain.SaleHash) (*Sale, error)
	GetSaleParticipants(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error)
	GetSaleWhitelists(ctx ctx.Ctx, hash domain.SaleHash) ([]domain.Address, error)
	IsWhitelisted(ctx ctx.Ctx, hash domain.SaleHash, target domain.Address) (bool, error)
	GetPurchasedAmount(ctx ctx.Ctx, hash domain.SaleHash, buyer domain.Address) (*big.Int, error)
}
