package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"skyline/flightsync/internal/models/entities"
)

const (
	mongoDateCollection       = "schedules_by_date"
	mongoRouteMonthCollection = "schedules_by_route_month"
)

// MongoScheduleStore keeps each layout in its own collection. Without multi-document
// transactions a failure between the two writes surfaces as a StoreError naming the
// layout that failed; re-saving the record repairs it.
type MongoScheduleStore struct {
	db           *mongo.Database
	byDate       mongoDateLayout
	byRouteMonth mongoRouteMonthLayout
}

var _ ScheduleStore = (*MongoScheduleStore)(nil)

type mongoDateDoc struct {
	ID                      string `bson:"_id"`
	entities.ScheduleRecord `bson:",inline"`
	UpdatedAt               time.Time `bson:"updatedAt"`
}

type mongoRouteMonthDoc struct {
	ID        string                             `bson:"_id"`
	Route     string                             `bson:"route"`
	Year      int                                `bson:"year"`
	Month     int                                `bson:"month"`
	Flights   map[string]entities.ScheduleRecord `bson:"flights"`
	UpdatedAt time.Time                          `bson:"updatedAt"`
}

// NewMongoScheduleStore creates the store and its indexes
func NewMongoScheduleStore(ctx context.Context, db *mongo.Database) (*MongoScheduleStore, error) {
	s := &MongoScheduleStore{
		db:           db,
		byDate:       mongoDateLayout{collection: db.Collection(mongoDateCollection)},
		byRouteMonth: mongoRouteMonthLayout{collection: db.Collection(mongoRouteMonthCollection)},
	}

	dateIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}, {Key: "departureIata", Value: 1}},
	}
	if _, err := s.byDate.collection.Indexes().CreateOne(ctx, dateIndex); err != nil {
		return nil, &StoreError{Op: "create_index", Layout: LayoutDate, Err: err}
	}

	routeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "route", Value: 1}, {Key: "year", Value: 1}, {Key: "month", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.byRouteMonth.collection.Indexes().CreateOne(ctx, routeIndex); err != nil {
		return nil, &StoreError{Op: "create_index", Layout: LayoutRouteMonth, Err: err}
	}

	return s, nil
}

// Save upserts the date document, then merges the record into its aggregate document
func (s *MongoScheduleStore) Save(ctx context.Context, record *entities.ScheduleRecord) (SaveResult, error) {
	if err := s.byDate.upsert(ctx, record); err != nil {
		return SaveResult{}, &StoreError{Op: "save", Layout: LayoutDate, Err: err}
	}

	prev, err := s.byRouteMonth.upsert(ctx, record)
	if err != nil {
		return SaveResult{}, &StoreError{Op: "save", Layout: LayoutRouteMonth, Err: err}
	}

	return compareWithPrevious(record, prev), nil
}

// GetByDate returns the records of one date
func (s *MongoScheduleStore) GetByDate(ctx context.Context, date string, departureIATA string) ([]entities.ScheduleRecord, error) {
	records, err := s.byDate.find(ctx, bson.M{"date": date}, departureIATA)
	if err != nil {
		return nil, &StoreError{Op: "get_by_date", Layout: LayoutDate, Err: err}
	}
	return records, nil
}

// GetByMonth scans the date collection across the month
func (s *MongoScheduleStore) GetByMonth(ctx context.Context, year, month int, departureIATA string) ([]entities.ScheduleRecord, error) {
	first, last := entities.MonthDateRange(year, month)
	records, err := s.byDate.find(ctx, bson.M{"date": bson.M{"$gte": first, "$lte": last}}, departureIATA)
	if err != nil {
		return nil, &StoreError{Op: "get_by_month", Layout: LayoutDate, Err: err}
	}
	return records, nil
}

// GetByRouteAndMonth reads one aggregate document
func (s *MongoScheduleStore) GetByRouteAndMonth(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error) {
	records, err := s.byRouteMonth.find(ctx, route, year, month)
	if err != nil {
		return nil, &StoreError{Op: "get_by_route_month", Layout: LayoutRouteMonth, Err: err}
	}
	return records, nil
}

// Ping checks the primary is reachable
func (s *MongoScheduleStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

type mongoDateLayout struct {
	collection *mongo.Collection
}

func (l mongoDateLayout) upsert(ctx context.Context, record *entities.ScheduleRecord) error {
	doc := mongoDateDoc{
		ID:             record.IdentityKey(),
		ScheduleRecord: *record,
		UpdatedAt:      time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	_, err := l.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (l mongoDateLayout) find(ctx context.Context, filter bson.M, departureIATA string) ([]entities.ScheduleRecord, error) {
	if departureIATA != "" {
		filter["departureIata"] = departureIATA
	}

	cursor, err := l.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]entities.ScheduleRecord, 0)
	for cursor.Next(ctx) {
		var doc mongoDateDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, doc.ScheduleRecord)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	entities.SortRecords(records)
	return records, nil
}

type mongoRouteMonthLayout struct {
	collection *mongo.Collection
}

// upsert sets flights.<identity> atomically on the aggregate document and returns the
// entry that was there before
func (l mongoRouteMonthLayout) upsert(ctx context.Context, record *entities.ScheduleRecord) (*entities.ScheduleRecord, error) {
	year, month := record.YearMonth()
	id := routeMonthID(record.Route, year, month)
	field := "flights." + record.IdentityKey()

	update := bson.M{
		"$set": bson.M{
			field:       record,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"route": record.Route,
			"year":  year,
			"month": month,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before).
		SetProjection(bson.M{field: 1})

	var before mongoRouteMonthDoc
	err := l.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	if prev, ok := before.Flights[record.IdentityKey()]; ok {
		return &prev, nil
	}
	return nil, nil
}

func (l mongoRouteMonthLayout) find(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error) {
	var doc mongoRouteMonthDoc
	err := l.collection.FindOne(ctx, bson.M{"_id": routeMonthID(route, year, month)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []entities.ScheduleRecord{}, nil
		}
		return nil, err
	}

	records := make([]entities.ScheduleRecord, 0, len(doc.Flights))
	for _, rec := range doc.Flights {
		records = append(records, rec)
	}
	entities.SortRecords(records)
	return records, nil
}
