package main

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantfold/lob-oracle/internal/config"
	"github.com/quantfold/lob-oracle/internal/database"
	"github.com/quantfold/lob-oracle/internal/journal"
	"github.com/quantfold/lob-oracle/internal/orderbook"
	"github.com/quantfold/lob-oracle/internal/types"
)

const (
	baseToken  = "TKA"
	quoteToken = "TKB"
)

var orderTypes = []types.OrderType{types.Limit, types.Limit, types.Limit, types.IOC, types.FOK}

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// opStats tracks latency statistics for one engine operation
type opStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the operation
func (st *opStats) addDuration(d time.Duration) {
	st.durations = append(st.durations, d)
	st.totalCalls++
}

// calculate computes latency statistics from recorded durations
// Returns min, max, mean, median, 95th percentile, and 99th percentile durations
func (st *opStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(st.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	sort.Slice(st.durations, func(i, j int) bool {
		return st.durations[i] < st.durations[j]
	})

	min = st.durations[0]
	max = st.durations[len(st.durations)-1]

	var sum time.Duration
	for _, d := range st.durations {
		sum += d
	}
	mean = sum / time.Duration(len(st.durations))
	median = st.durations[len(st.durations)/2]

	p95idx := int(math.Ceil(float64(len(st.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(st.durations))*0.99)) - 1
	p95 = st.durations[p95idx]
	p99 = st.durations[p99idx]

	return
}

// simulation drives a deterministic pseudo-random operation stream against
// one engine instance. The same seed always replays the same stream, so a
// run can be reproduced bit-for-bit against the authoritative system.
type simulation struct {
	cfg     *config.Config
	rng     *rand.Rand
	engine  *orderbook.Engine
	journal *journal.Service
	stats   map[string]*opStats

	liveOrders []uint64
	owners     map[uint64]string

	placed       int
	rejected     int
	cancelled    int
	cancelMisses int
	unauthorized int
	sides        map[types.Side]int
	orderKinds   map[types.OrderType]int
}

func newSimulation(cfg *config.Config) (*simulation, error) {
	db, err := database.NewDatabase(cfg.JournalDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal database: %w", err)
	}

	journalService := journal.NewService(db)
	engine := orderbook.NewEngine(orderbook.WithTradeRecorder(journalService))

	return &simulation{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		engine:  engine,
		journal: journalService,
		stats: map[string]*opStats{
			"place":  {name: "Place Order"},
			"cancel": {name: "Cancel Order"},
			"get":    {name: "Get Order"},
		},
		owners:     make(map[uint64]string),
		sides:      make(map[types.Side]int),
		orderKinds: make(map[types.OrderType]int),
	}, nil
}

// scaled converts a small integer quantity to 18-decimal fixed point.
func scaled(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), types.PriceScale)
}

func (s *simulation) trader() string {
	return fmt.Sprintf("trader_%d", s.rng.Intn(s.cfg.Traders))
}

// placeRandomOrder issues one randomized place operation. A small slice of
// orders is generated deliberately invalid to exercise the rejection path.
func (s *simulation) placeRandomOrder(timestamp uint64) {
	trader := s.trader()
	side := types.Buy
	tokenIn, tokenOut := baseToken, quoteToken
	if s.rng.Intn(2) == 1 {
		side = types.Sell
		tokenIn, tokenOut = quoteToken, tokenIn
	}
	orderType := orderTypes[s.rng.Intn(len(orderTypes))]

	amountIn := scaled(int64(s.rng.Intn(200) + 1))
	amountOut := scaled(int64(s.rng.Intn(400) + 1))
	if s.rng.Intn(50) == 0 {
		amountIn = big.NewInt(0) // deliberate rejection
	}

	start := time.Now()
	orderID, err := s.engine.PlaceOrder(trader, tokenIn, tokenOut, amountIn, amountOut, orderType, side, timestamp)
	s.stats["place"].addDuration(time.Since(start))

	if err != nil {
		s.stats["place"].failures++
		s.rejected++
		log.Debug().Err(err).Str("trader", trader).Msg("order rejected")
		return
	}

	s.placed++
	s.sides[side]++
	s.orderKinds[orderType]++
	if _, ok := s.engine.GetOrder(orderID); ok {
		s.liveOrders = append(s.liveOrders, orderID)
		s.owners[orderID] = trader
	}

	log.Debug().
		Uint64("order_id", orderID).
		Str("trader", trader).
		Str("side", string(side)).
		Str("order_type", string(orderType)).
		Msg("order placed")
}

// cancelRandomOrder attempts to cancel a random previously placed order.
// Occasionally it uses the wrong requester or a never-assigned id so the
// unauthorized and not-found paths get exercised too.
func (s *simulation) cancelRandomOrder() {
	if len(s.liveOrders) == 0 {
		return
	}

	orderID := s.liveOrders[s.rng.Intn(len(s.liveOrders))]
	requester := s.owners[orderID]
	switch s.rng.Intn(10) {
	case 0:
		requester = "intruder"
	case 1:
		orderID = uint64(1 << 40) // never assigned
		requester = s.trader()
	}

	start := time.Now()
	ok, err := s.engine.CancelOrder(orderID, requester)
	s.stats["cancel"].addDuration(time.Since(start))

	switch {
	case err != nil:
		s.stats["cancel"].failures++
		s.unauthorized++
	case ok:
		s.cancelled++
	default:
		s.cancelMisses++
	}
}

// run executes the whole operation stream.
func (s *simulation) run() {
	for i := 0; i < s.cfg.Orders; i++ {
		s.placeRandomOrder(uint64(i + 1))
		if s.rng.Intn(100) < s.cfg.CancelRate {
			s.cancelRandomOrder()
		}
	}

	// exercise the read path across every id the stream produced
	for _, orderID := range s.liveOrders {
		start := time.Now()
		s.engine.GetOrder(orderID)
		s.stats["get"].addDuration(time.Since(start))
	}
}

// audit re-checks the engine's structural invariants from the outside using
// only the query surface. Any violation is a bug in the model itself.
func (s *simulation) audit() int {
	violations := 0

	bids := s.engine.BuyOrders()
	asks := s.engine.SellOrders()

	for i := 1; i < len(bids); i++ {
		if bids[i-1].Price.Cmp(bids[i].Price) < 0 {
			violations++
			log.Error().Uint64("order_id", bids[i].ID).Msg("bid book out of price order")
		}
		if bids[i-1].Price.Cmp(bids[i].Price) == 0 && bids[i-1].Timestamp > bids[i].Timestamp {
			violations++
			log.Error().Uint64("order_id", bids[i].ID).Msg("bid book out of time order")
		}
	}
	for i := 1; i < len(asks); i++ {
		if asks[i-1].Price.Cmp(asks[i].Price) > 0 {
			violations++
			log.Error().Uint64("order_id", asks[i].ID).Msg("ask book out of price order")
		}
		if asks[i-1].Price.Cmp(asks[i].Price) == 0 && asks[i-1].Timestamp > asks[i].Timestamp {
			violations++
			log.Error().Uint64("order_id", asks[i].ID).Msg("ask book out of time order")
		}
	}

	if len(bids) > 0 && len(asks) > 0 && bids[0].Price.Cmp(asks[0].Price) >= 0 {
		violations++
		log.Error().
			Str("best_bid", bids[0].Price.String()).
			Str("best_ask", asks[0].Price.String()).
			Msg("book left in a crossed state")
	}

	for _, book := range [][]*types.Order{bids, asks} {
		for _, o := range book {
			if o.OrderType != types.Limit || o.Filled {
				violations++
				log.Error().Uint64("order_id", o.ID).Msg("non-resting order found in book")
			}
			if o.FilledAmountIn.Sign() < 0 || o.FilledAmountIn.Cmp(o.AmountIn) > 0 {
				violations++
				log.Error().Uint64("order_id", o.ID).Msg("cumulative fill outside capacity bound")
			}
		}
	}

	return violations
}

// printSummary reports run totals, final book shape, and latency statistics
func (s *simulation) printSummary(duration time.Duration, violations int) {
	bids := s.engine.BuyOrders()
	asks := s.engine.SellOrders()

	tradeCount, err := s.journal.Count()
	if err != nil {
		log.Error().Err(err).Msg("failed to count journaled trades")
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("MATCHING ENGINE SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
Order Statistics
----------------
Placed:            %d
Rejected:          %d
Cancelled:         %d
Cancel misses:     %d
Unauthorized:      %d
Trades journaled:  %d
Resting bids:      %d
Resting asks:      %d
Invariant faults:  %d
Duration:          %v

Side Distribution
-----------------
`, s.placed, s.rejected, s.cancelled, s.cancelMisses, s.unauthorized,
		tradeCount, len(bids), len(asks), violations, duration.Round(time.Millisecond))

	for side, count := range s.sides {
		barLength := 0
		if s.placed > 0 {
			barLength = count * 20 / s.placed
		}
		fmt.Printf("%-4s: %s (%d)\n", side, strings.Repeat("#", barLength), count)
	}

	fmt.Println("\nOrder Type Distribution")
	fmt.Println("-----------------------")
	for kind, count := range s.orderKinds {
		fmt.Printf("%-5s: %d\n", kind, count)
	}

	if len(bids) > 0 {
		fmt.Printf("\nBest bid: %s (order %d)\n", bids[0].Price, bids[0].ID)
	}
	if len(asks) > 0 {
		fmt.Printf("Best ask: %s (order %d)\n", asks[0].Price, asks[0].ID)
	}

	s.printPerformanceStats()
}

// printPerformanceStats outputs formatted latency statistics for all engine operations
func (s *simulation) printPerformanceStats() {
	fmt.Println("\nEngine Operation Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Operation", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, stats := range s.stats {
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Microsecond),
			max.Round(time.Microsecond),
			mean.Round(time.Microsecond),
			median.Round(time.Microsecond),
			p95.Round(time.Microsecond),
			p99.Round(time.Microsecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}

// main replays a seeded operation stream and audits the resulting state
func main() {
	cfg := config.Load()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	runID := uuid.New().String()
	log.Info().
		Str("run_id", runID).
		Int64("seed", cfg.Seed).
		Int("orders", cfg.Orders).
		Int("traders", cfg.Traders).
		Msg("starting simulation")

	sim, err := newSimulation(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize simulation")
	}

	start := time.Now()
	sim.run()
	duration := time.Since(start)

	violations := sim.audit()
	sim.printSummary(duration, violations)

	if violations > 0 {
		log.Fatal().Int("violations", violations).Msg("invariant audit failed")
	}
	log.Info().Str("run_id", runID).Msg("simulation completed")
}
