// Package runtimetest provides in-memory stand-ins for the hosting chain
// environment. They are fakes rather than call-expectation mocks because
// settlement tests need real balance state flowing through them, plus a
// snapshot facility emulating the host transaction's rollback.
package runtimetest

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/domain"
	"github.com/meridian-chain/corecontracts/domain/runtime"
	"github.com/meridian-chain/corecontracts/service/keyvalue"
	"github.com/meridian-chain/corecontracts/stores/balance"
)

// Ledger is a stateful fake token ledger backed by the same balance sheet
// primitive the real ledger accounts with.
type Ledger struct {
	Chain  string
	Store  *keyvalue.InMemory
	tokens map[domain.Symbol]*runtime.TokenInfo
	nfts   map[string]*runtime.NFTInstance
}

func NewLedger() *Ledger {
	return &Ledger{
		Chain:  "main",
		Store:  keyvalue.NewInMemory(),
		tokens: map[domain.Symbol]*runtime.TokenInfo{},
		nfts:   map[string]*runtime.NFTInstance{},
	}
}

func nftKey(symbol domain.Symbol, tokenId domain.TokenId) string {
	return string(symbol) + "." + string(tokenId)
}

// RegisterToken declares an asset.
func (l *Ledger) RegisterToken(info *runtime.TokenInfo) {
	l.tokens[info.Symbol] = info
}

// MintFungible credits holder out of thin air, for test setup only.
func (l *Ledger) MintFungible(ctx ctx.Ctx, symbol domain.Symbol, holder domain.Address, amount *big.Int) {
	balance.NewSheet(symbol).Add(ctx, l.Store, holder, amount)
}

// MintNFT registers an instance owned by its creator.
func (l *Ledger) MintNFT(symbol domain.Symbol, tokenId domain.TokenId, creator domain.Address, seriesId string) {
	l.nfts[nftKey(symbol, tokenId)] = &runtime.NFTInstance{
		TokenId:      tokenId,
		CurrentChain: l.Chain,
		CurrentOwner: creator,
		Creator:      creator,
		SeriesId:     seriesId,
	}
}

// MoveNFTOffChain marks an instance as having left this chain.
func (l *Ledger) MoveNFTOffChain(symbol domain.Symbol, tokenId domain.TokenId, chain string) {
	l.nfts[nftKey(symbol, tokenId)].CurrentChain = chain
}

func (l *Ledger) ChainName(ctx.Ctx) string { return l.Chain }

func (l *Ledger) Token(_ ctx.Ctx, symbol domain.Symbol) (*runtime.TokenInfo, error) {
	info, ok := l.tokens[symbol]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return info, nil
}

func (l *Ledger) ReadNFT(_ ctx.Ctx, symbol domain.Symbol, tokenId domain.TokenId) (*runtime.NFTInstance, error) {
	nft, ok := l.nfts[nftKey(symbol, tokenId)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *nft
	return &cp, nil
}

func (l *Ledger) TransferFungible(ctx ctx.Ctx, symbol domain.Symbol, from, to domain.Address, amount *big.Int) error {
	if _, ok := l.tokens[symbol]; !ok {
		return domain.ErrTokenNotFound
	}
	sheet := balance.NewSheet(symbol)
	if !sheet.Subtract(ctx, l.Store, from, amount) {
		return domain.ErrInsufficientBalance
	}
	if !sheet.Add(ctx, l.Store, to, amount) {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (l *Ledger) TransferNFT(_ ctx.Ctx, symbol domain.Symbol, from, to domain.Address, tokenId domain.TokenId) error {
	nft, ok := l.nfts[nftKey(symbol, tokenId)]
	if !ok {
		return domain.ErrNotFound
	}
	if nft.CurrentOwner != from {
		return domain.ErrInvalidOwner
	}
	nft.CurrentOwner = to
	return nil
}

func (l *Ledger) BalanceOf(ctx ctx.Ctx, symbol domain.Symbol, holder domain.Address) *big.Int {
	return balance.NewSheet(symbol).Get(ctx, l.Store, holder)
}

func (l *Ledger) ConvertQuoteToBase(amount, price *big.Int, base, quote *runtime.TokenInfo) *big.Int {
	quoteUnits := decimal.NewFromBigInt(amount, -quote.Decimals)
	priceUnits := decimal.NewFromBigInt(price, -domain.FiatDecimals)
	return quoteUnits.Div(priceUnits).Shift(base.Decimals).Truncate(0).BigInt()
}

func (l *Ledger) ConvertBaseToQuote(amount, price *big.Int, base, quote *runtime.TokenInfo) *big.Int {
	baseUnits := decimal.NewFromBigInt(amount, -base.Decimals)
	priceUnits := decimal.NewFromBigInt(price, -domain.FiatDecimals)
	return baseUnits.Mul(priceUnits).Shift(quote.Decimals).Truncate(0).BigInt()
}

// Snapshot captures balances and custody; the returned function restores
// them, emulating the host transaction discarding a failed operation.
func (l *Ledger) Snapshot() func() {
	restoreStore := l.Store.Snapshot()
	owners := map[string]domain.Address{}
	chains := map[string]string{}
	for k, nft := range l.nfts {
		owners[k] = nft.CurrentOwner
		chains[k] = nft.CurrentChain
	}
	return func() {
		restoreStore()
		for k, nft := range l.nfts {
			nft.CurrentOwner = owners[k]
			nft.CurrentChain = chains[k]
		}
	}
}

// Identity is a witness set.
type Identity struct {
	Witnesses map[domain.Address]bool
}

func NewIdentity(addrs ...domain.Address) *Identity {
	id := &Identity{Witnesses: map[domain.Address]bool{}}
	for _, a := range addrs {
		id.Witnesses[a] = true
	}
	return id
}

func (id *Identity) IsWitness(_ ctx.Ctx, addr domain.Address) bool {
	return id.Witnesses[addr]
}

// Clock is a settable transaction time source.
type Clock struct {
	Time time.Time
}

func (c *Clock) Now(ctx.Ctx) time.Time { return c.Time }

func (c *Clock) Advance(d time.Duration) { c.Time = c.Time.Add(d) }

// Gate is a fixed protocol version.
type Gate struct {
	Version int
}

func (g *Gate) ProtocolVersion(ctx.Ctx) int { return g.Version }

// Series maps series ids to declared royalty percentages. Series without an
// entry declare no royalty accessor.
type Series struct {
	Royalties map[string]*big.Int
}

func NewSeries() *Series {
	return &Series{Royalties: map[string]*big.Int{}}
}

func (s *Series) RoyaltyAccessor(_ ctx.Ctx, _ domain.Symbol, seriesId string) (runtime.RoyaltyAccessor, bool) {
	pct, ok := s.Royalties[seriesId]
	if !ok {
		return nil, false
	}
	return royaltyAccessor{pct: pct}, true
}

type royaltyAccessor struct {
	pct *big.Int
}

func (r royaltyAccessor) RoyaltiesOf(ctx.Ctx, domain.TokenId) (*big.Int, error) {
	return new(big.Int).Set(r.pct), nil
}

// SwapDispatcher performs the exchange engine's conversion directly against
// the fake ledger: the escrowed from-asset is swapped into an equal value
// of the to-asset. Err, when set, is returned instead to exercise aborts.
type SwapDispatcher struct {
	Ledger *Ledger
	Err    error
	Calls  int
}

func (d *SwapDispatcher) Call(ctx ctx.Ctx, contract, method string, args ...interface{}) error {
	d.Calls++
	if d.Err != nil {
		return d.Err
	}
	if contract != domain.SwapContract || method != domain.SwapMethod {
		return domain.ErrNotFound
	}

	holder := args[0].(domain.Address)
	from := args[1].(domain.Symbol)
	to := args[2].(domain.Symbol)
	amount := args[3].(*big.Int)

	fromToken, err := d.Ledger.Token(ctx, from)
	if err != nil {
		return err
	}
	toToken, err := d.Ledger.Token(ctx, to)
	if err != nil {
		return err
	}

	// 1:1 value swap at matching decimal scale
	converted := decimal.NewFromBigInt(amount, -fromToken.Decimals).Shift(toToken.Decimals).Truncate(0).BigInt()

	sheetFrom := balance.NewSheet(from)
	if !sheetFrom.Subtract(ctx, d.Ledger.Store, holder, amount) {
		return domain.ErrInsufficientBalance
	}
	balance.NewSheet(to).Add(ctx, d.Ledger.Store, holder, converted)
	return nil
}
