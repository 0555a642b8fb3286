package service

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"lob/domain/orderbook"
	"lob/infra/logger"
	"lob/infra/metrics"
	"lob/infra/sequence"
	"lob/infra/wal"
	entrywal "lob/infra/wal/entry"
	exitwal "lob/infra/wal/exit"
)

// OrderService serialises every write to the book behind one mutex.
type OrderService struct {
	mu sync.Mutex

	book     *orderbook.OrderBook
	seqGen   *sequence.Sequencer
	entryWAL *entrywal.WAL
	exitWAL  *exitwal.WAL

	metrics *metrics.Book
	quotes  chan<- orderbook.Quote
	last    orderbook.Quote
	log     *logger.Logger
}

// Deps are the optional collaborators of the service. A nil field
// disables that concern.
type Deps struct {
	EntryWAL *entrywal.WAL
	ExitWAL  *exitwal.WAL
	Metrics  *metrics.Book
	Quotes   chan<- orderbook.Quote
	Logger   *logger.Logger
}

func NewOrderService(book *orderbook.OrderBook, seqGen *sequence.Sequencer, deps Deps) *OrderService {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &OrderService{
		book:     book,
		seqGen:   seqGen,
		entryWAL: deps.EntryWAL,
		exitWAL:  deps.ExitWAL,
		metrics:  deps.Metrics,
		quotes:   deps.Quotes,
		last:     book.Top(),
		log:      log,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Add rests a new order and returns the journal seq of the command.
func (s *OrderService) Add(ctx context.Context, id uint64, side orderbook.Side, qty, price int64) (seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe(ctx, "add", id, err) }()

	if err := s.book.CheckAdd(id, side, qty); err != nil {
		return 0, err
	}

	seq = s.seqGen.Next()
	cmd := wal.Command{OrderID: id, Side: uint8(side), Qty: qty, Price: price}
	if err := s.journal(entrywal.RecordAdd, seq, cmd); err != nil {
		return 0, err
	}
	if err := s.book.Add(id, side, qty, price); err != nil {
		return 0, errors.Wrap(err, "apply journalled add")
	}

	o, _ := s.book.Order(id)
	s.emit(ctx, newEvent(EventAdded, seq, o, qty, qty, s.book))
	return seq, nil
}

// Cancel removes a resting order. Under the idempotent policy an
// unknown id returns seq 0 and nil without being journalled.
func (s *OrderService) Cancel(ctx context.Context, id uint64) (seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe(ctx, "cancel", id, err) }()

	if err := s.book.CheckCancel(id); err != nil {
		return 0, err
	}
	o, ok := s.book.Order(id)
	if !ok {
		return 0, nil
	}

	seq = s.seqGen.Next()
	if err := s.journal(entrywal.RecordCancel, seq, wal.Command{OrderID: id}); err != nil {
		return 0, err
	}
	if err := s.book.Cancel(id); err != nil {
		return 0, errors.Wrap(err, "apply journalled cancel")
	}

	s.emit(ctx, newEvent(EventCancelled, seq, o, o.Qty, 0, s.book))
	return seq, nil
}

// Execute fills qty of a resting order.
func (s *OrderService) Execute(ctx context.Context, id uint64, qty int64) (seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe(ctx, "execute", id, err) }()

	if err := s.book.CheckExecute(id, qty); err != nil {
		return 0, err
	}
	o, ok := s.book.Order(id)
	if !ok {
		return 0, nil
	}

	seq = s.seqGen.Next()
	if err := s.journal(entrywal.RecordExecute, seq, wal.Command{OrderID: id, Qty: qty}); err != nil {
		return 0, err
	}
	if err := s.book.Execute(id, qty); err != nil {
		return 0, errors.Wrap(err, "apply journalled execute")
	}

	remaining := o.Qty - qty
	t := EventExecuted
	if remaining == 0 {
		t = EventFilled
	}
	s.emit(ctx, newEvent(t, seq, o, qty, remaining, s.book))
	return seq, nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) BestBid() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.BestBid()
}

func (s *OrderService) BestAsk() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.BestAsk()
}

// Top returns the current quote stamped with the last journal seq.
func (s *OrderService) Top() orderbook.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.book.Top()
	q.Seq = s.seqGen.Current()
	return q
}

func (s *OrderService) Order(id uint64) (orderbook.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Order(id)
}

func (s *OrderService) Depth(side orderbook.Side, n int) []orderbook.LevelView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Depth(side, n)
}

// Snapshot returns every resting order in walk order and the seq it
// is consistent with.
func (s *OrderService) Snapshot() ([]orderbook.Order, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]orderbook.Order, 0, s.book.Len())
	s.book.Walk(func(o orderbook.Order) {
		out = append(out, o)
	})
	return out, s.seqGen.Current()
}

//
// ──────────────────────────────────────────────────────────
// Internals (caller holds mu)
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) journal(t entrywal.RecordType, seq uint64, cmd wal.Command) error {
	if s.entryWAL == nil {
		return nil
	}
	return errors.Wrapf(s.entryWAL.Append(entrywal.NewRecord(t, seq, cmd)), "journal %s", t)
}

// emit hands the event to the outbox and pushes a quote when the top
// of book moved. The command is already applied, so failures here are
// logged rather than returned.
func (s *OrderService) emit(ctx context.Context, e Event) {
	if s.exitWAL != nil {
		payload, err := e.Marshal()
		if err == nil {
			err = s.exitWAL.PutNew(e.Seq, payload)
		}
		if err != nil {
			s.log.ErrorContext(ctx, errors.Wrapf(err, "outbox event %d", e.Seq),
				logger.NewField("type", string(e.Type)))
		}
	}

	q := s.book.Top()
	if q.SameTop(s.last) {
		return
	}
	q.Seq = e.Seq
	s.last = q
	if s.quotes == nil {
		return
	}
	select {
	case s.quotes <- q:
	default:
		if s.metrics != nil {
			s.metrics.QuoteDrops.Inc()
		}
	}
}

func (s *OrderService) observe(ctx context.Context, op string, id uint64, err error) {
	if err != nil {
		s.log.WarnContext(ctx, "command rejected",
			logger.NewField("op", op),
			logger.NewField("order_id", id),
			logger.NewField("error", err.Error()),
		)
	}
	if s.metrics == nil {
		return
	}
	s.metrics.Commands.WithLabelValues(op, metrics.Result(err)).Inc()
	s.refreshGauges()
}

func (s *OrderService) refreshGauges() {
	for _, side := range []orderbook.Side{orderbook.Bid, orderbook.Ask} {
		label := side.String()
		s.metrics.RestingOrder.WithLabelValues(label).Set(float64(s.book.OrderCount(side)))
		s.metrics.Levels.WithLabelValues(label).Set(float64(s.book.LevelCount(side)))
	}
	setBest(s.metrics, "bid", s.book.BestBid)
	setBest(s.metrics, "ask", s.book.BestAsk)
}

func setBest(m *metrics.Book, side string, best func() (int64, bool)) {
	g := m.BestPrice.WithLabelValues(side)
	if p, ok := best(); ok {
		g.Set(float64(p))
		return
	}
	g.Set(math.NaN())
}
