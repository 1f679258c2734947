package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/query"
	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Store.
type Options struct {
	// Logger receives store diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// DisableEvents turns off operation events. Subscribe still works but
	// callbacks never fire.
	DisableEvents bool
	// NewID generates identifiers for CollectionRef.Add. Defaults to
	// time-ordered UUIDv7 strings.
	NewID func() (string, error)
}

// Store is the single entry point to a document store. It maps collection
// names to tables, runs queries and hands out record handles. A Store is
// created by its caller and owns its driver until Close.
type Store struct {
	driver    Driver
	processor *query.Processor
	logger    *zap.Logger
	newID     func() (string, error)

	bus           *events.TypedEventBus[Event]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
	closeBus      sync.Once
}

// New creates a Store over driver.
func New(driver Driver, opts *Options) (*Store, error) {
	if driver == nil {
		return nil, fmt.Errorf("persistence: driver is required")
	}
	if opts == nil {
		opts = &Options{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	newID := opts.NewID
	if newID == nil {
		newID = newTimeOrderedID
	}

	s := &Store{
		driver:        driver,
		processor:     query.NewProcessor(logger),
		logger:        logger,
		newID:         newID,
		subscriptions: make(map[string]*SubscriptionInfo),
	}

	if !opts.DisableEvents {
		bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("could not initialize event bus: %w", err)
		}
		s.bus = bus
	}

	return s, nil
}

// NewMemory creates a Store backed by a fresh in-memory driver.
func NewMemory(opts *Options) (*Store, error) {
	var logger *zap.Logger
	if opts != nil {
		logger = opts.Logger
	}
	return New(NewMemoryDriver(logger), opts)
}

func newTimeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// Collection returns a reference to the named collection, creating its
// table on first reference. If the table cannot be created here, the
// reference is still returned and the first write reports the failure.
func (s *Store) Collection(name string) *CollectionRef {
	_, _ = s.table(name)
	return &CollectionRef{store: s, name: name}
}

// Doc returns a handle to one record.
func (s *Store) Doc(collection, id string) *RecordHandle {
	return s.Collection(collection).Doc(id)
}

// Query starts a query against collection.
func (s *Store) Query(collection string) query.Query {
	return query.New(collection)
}

// Collections lists the collection names known to the driver.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	return s.driver.Tables(ctx)
}

// Run executes q against its collection. A collection that has never been
// written to yields an empty snapshot.
func (s *Store) Run(ctx context.Context, q query.Query) (*Snapshot, error) {
	result, err := s.withEventEmission(
		ctx,
		"query",
		DocumentReadStart,
		DocumentReadSuccess,
		DocumentReadFailed,
		q.Collection(),
		"",
		nil,
		q.String(),
		func() (any, error) {
			return s.run(ctx, q)
		},
	)
	if err != nil {
		return nil, err
	}
	return result.(*Snapshot), nil
}

func (s *Store) run(ctx context.Context, q query.Query) (*Snapshot, error) {
	t, ok := s.driver.Lookup(q.Collection())
	if !ok {
		s.logger.Debug("Query against unknown collection", zap.String("collection", q.Collection()))
		return &Snapshot{Records: []core.Record{}}, nil
	}

	records := t.All(ctx)
	if f, ok := t.(Filterer); ok && len(q.Predicates()) > 0 {
		records = f.Filter(ctx, q.Predicates())
	}

	res, err := s.processor.Execute(q, records)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Records: res.Records}, nil
}

// Subscribe registers a callback for one event type and returns the
// subscription id.
func (s *Store) Subscribe(options SubscribeOptions) string {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := uuid.New().String()
	unsubscribe := func() {}
	if s.bus != nil {
		unsubscribe = s.bus.Subscribe(string(options.Event), options.Callback)
	}

	s.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       options.Event,
		Label:       options.Label,
		Description: options.Description,
		unsubscribe: unsubscribe,
	}
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (s *Store) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if info, ok := s.subscriptions[id]; ok {
		info.unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions returns every active subscription.
func (s *Store) Subscriptions() []SubscriptionInfo {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}

// Close removes all subscriptions, shuts down the event bus and closes the
// driver. Events emitted after Close are dropped.
func (s *Store) Close() error {
	s.subMu.Lock()
	for id, info := range s.subscriptions {
		info.unsubscribe()
		delete(s.subscriptions, id)
	}
	s.subMu.Unlock()

	var busErr error
	if s.bus != nil {
		s.closeBus.Do(func() { busErr = s.bus.Close() })
	}
	if busErr != nil {
		return fmt.Errorf("failed to close event bus: %w", busErr)
	}

	if err := s.driver.Close(); err != nil {
		return fmt.Errorf("failed to close driver: %w", err)
	}
	return nil
}

// table returns the named table, announcing it when this is the first
// reference.
func (s *Store) table(name string) (Table, error) {
	t, created, err := s.driver.Table(name)
	if err != nil {
		s.logger.Warn("Failed to create collection", zap.String("collection", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	if created {
		s.logger.Info("Created collection", zap.String("collection", name))
		s.emitEvent(createEvent(TableCreate, "create_table", name, "", nil, nil, nil, nil, time.Time{}))
	}
	return t, nil
}

func (s *Store) get(ctx context.Context, collection, id string) (*DocumentSnapshot, error) {
	result, err := s.withEventEmission(
		ctx,
		"get",
		DocumentReadStart,
		DocumentReadSuccess,
		DocumentReadFailed,
		collection,
		id,
		nil,
		nil,
		func() (any, error) {
			t, ok := s.driver.Lookup(collection)
			if !ok {
				return &DocumentSnapshot{id: id}, nil
			}
			doc, found, err := t.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &DocumentSnapshot{id: id, data: doc, exists: found}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return result.(*DocumentSnapshot), nil
}

func (s *Store) insert(ctx context.Context, collection, id string, doc core.Document) error {
	_, err := s.withEventEmission(
		ctx,
		"insert",
		DocumentCreateStart,
		DocumentCreateSuccess,
		DocumentCreateFailed,
		collection,
		id,
		doc,
		nil,
		func() (any, error) {
			t, err := s.table(collection)
			if err != nil {
				return nil, err
			}
			return nil, t.Insert(ctx, id, doc)
		},
	)
	return err
}

func (s *Store) put(ctx context.Context, collection, id string, doc core.Document) error {
	_, err := s.withEventEmission(
		ctx,
		"put",
		DocumentCreateStart,
		DocumentCreateSuccess,
		DocumentCreateFailed,
		collection,
		id,
		doc,
		nil,
		func() (any, error) {
			t, err := s.table(collection)
			if err != nil {
				return nil, err
			}
			return nil, t.Put(ctx, id, doc)
		},
	)
	return err
}

func (s *Store) merge(ctx context.Context, collection, id string, patch core.Document) (core.Document, error) {
	result, err := s.withEventEmission(
		ctx,
		"merge",
		DocumentUpdateStart,
		DocumentUpdateSuccess,
		DocumentUpdateFailed,
		collection,
		id,
		patch,
		nil,
		func() (any, error) {
			t, ok := s.driver.Lookup(collection)
			if !ok {
				return nil, &core.NotFoundError{Collection: collection, ID: id}
			}
			return t.Merge(ctx, id, patch)
		},
	)
	if err != nil {
		return nil, err
	}
	return result.(core.Document), nil
}

func (s *Store) delete(ctx context.Context, collection, id string) (bool, error) {
	result, err := s.withEventEmission(
		ctx,
		"delete",
		DocumentDeleteStart,
		DocumentDeleteSuccess,
		DocumentDeleteFailed,
		collection,
		id,
		nil,
		nil,
		func() (any, error) {
			t, ok := s.driver.Lookup(collection)
			if !ok {
				return false, nil
			}
			return t.Delete(ctx, id)
		},
	)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *Store) emitEvent(event Event) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}

// withEventEmission wraps an operation with start, success, and failure events
func (s *Store) withEventEmission(
	ctx context.Context,
	operation string,
	startEventType EventType,
	successEventType EventType,
	failedEventType EventType,
	collection string,
	id string,
	input any,
	queryParam any,
	fn func() (any, error),
) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.bus == nil {
		return fn()
	}

	startTime := time.Now()
	s.emitEvent(createEvent(startEventType, operation, collection, id, input, nil, queryParam, nil, startTime))

	result, err := fn()
	if err != nil {
		errStr := err.Error()
		s.emitEvent(createEvent(failedEventType, operation, collection, id, input, nil, queryParam, &errStr, startTime))
		s.logger.Debug("Operation failed",
			zap.String("operation", operation),
			zap.String("collection", collection),
			zap.Error(err))
		return nil, err
	}

	s.emitEvent(createEvent(successEventType, operation, collection, id, input, eventOutput(result), queryParam, nil, startTime))
	return result, nil
}

// eventOutput converts an operation result into the payload carried by its
// success event.
func eventOutput(result any) any {
	switch r := result.(type) {
	case *Snapshot:
		return map[string]any{"count": r.Count()}
	case *DocumentSnapshot:
		return map[string]any{"exists": r.Exists()}
	default:
		return r
	}
}
