package sink

import (
	"sync"

	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/internal/obs"
	"main/pkg/conn"
)

const defaultBatchSize = 512

// recordRow mirrors one output record in the archive table.
type recordRow struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	Timestamp        uint64
	OrderID          int64
	Instrument       string `gorm:"index"`
	Side             string
	Type             string
	Quantity         uint64
	Price            float64
	Action           string
	Status           string
	ExecutedQuantity uint64
	ExecutionPrice   float64
	CounterpartyID   int64
}

func (recordRow) TableName() string {
	return "output_records"
}

// PostgresSink mirrors the record stream into Postgres for downstream
// analytics while forwarding every record to the next sink unchanged.
// Rows are buffered and inserted in batches.
type PostgresSink struct {
	next interface{ Emit(model.OutputRecord) }

	client    *conn.Client
	batchSize int

	mu  sync.Mutex
	buf []recordRow
}

// NewPostgresSink migrates the archive table and wraps the next sink.
func NewPostgresSink(client *conn.Client, next interface{ Emit(model.OutputRecord) }) (*PostgresSink, error) {
	if err := client.DB().AutoMigrate(&recordRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate output_records")
	}
	return &PostgresSink{
		next:      next,
		client:    client,
		batchSize: defaultBatchSize,
		buf:       make([]recordRow, 0, defaultBatchSize),
	}, nil
}

// Emit forwards the record and buffers the archive row.
func (s *PostgresSink) Emit(rec model.OutputRecord) {
	s.next.Emit(rec)

	row := recordRow{
		Timestamp:        rec.Timestamp,
		OrderID:          rec.OrderID,
		Instrument:       rec.Instrument,
		Side:             rec.Side.String(),
		Type:             rec.Type.String(),
		Quantity:         rec.Quantity,
		Price:            rec.Price,
		Action:           rec.Action.String(),
		Status:           rec.Status.String(),
		ExecutedQuantity: rec.ExecutedQty,
		ExecutionPrice:   rec.ExecutionPrice,
		CounterpartyID:   rec.CounterpartyID,
	}

	s.mu.Lock()
	s.buf = append(s.buf, row)
	full := len(s.buf) >= s.batchSize
	var batch []recordRow
	if full {
		batch = s.buf
		s.buf = make([]recordRow, 0, s.batchSize)
	}
	s.mu.Unlock()

	if full {
		s.insert(batch)
	}
}

// Flush writes any buffered rows. Call once after the pipeline drained.
func (s *PostgresSink) Flush() error {
	s.mu.Lock()
	batch := s.buf
	s.buf = make([]recordRow, 0, s.batchSize)
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := s.client.DB().Create(&batch).Error; err != nil {
		return errors.Wrap(err, "flush output_records")
	}
	return nil
}

// Close flushes and releases the connection pool.
func (s *PostgresSink) Close() error {
	if err := s.Flush(); err != nil {
		_ = s.client.Close()
		return err
	}
	return s.client.Close()
}

func (s *PostgresSink) insert(batch []recordRow) {
	// the record stream already went downstream; the archive is best-effort
	if err := s.client.DB().Create(&batch).Error; err != nil {
		obs.Errorf("insert %d output records: %v", len(batch), err)
	}
}
