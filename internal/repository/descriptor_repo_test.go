package repository_test

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"meross_emulator/internal/models"
	"meross_emulator/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool { return f(v) }

func plug() models.Descriptor {
	return models.Descriptor{
		UUID:          "dev-1",
		Type:          "mss310",
		Key:           "secret",
		Timezone:      "Asia/Baku",
		BugCompatible: true,
		Namespaces: models.Namespaces{
			Electricity: &models.ElectricityPayload{Electricity: models.Electricity{Power: 1015, Voltage: 2274}},
			ConsumptionX: &models.ConsumptionXPayload{ConsumptionX: []models.EnergyRecord{
				{Date: "2023-03-01", Time: 1677711486, Value: 52},
			}},
		},
	}
}

func TestDescriptorSQLite_Save_OmitsKeyAndStampsUTC(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := repository.NewDescriptorSQLite(db)

	noKey := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		var back map[string]any
		if err := json.Unmarshal([]byte(s), &back); err != nil {
			return false
		}
		_, hasKey := back["key"]
		return !hasKey && back["uuid"] == "dev-1" && back["timezone"] == "Asia/Baku"
	})
	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		return time.Since(tm) < 5*time.Second
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_descriptors")).
		WithArgs("dev-1", "mss310", noKey, isUTCRecent).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), plug()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDescriptorSQLite_Save_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := repository.NewDescriptorSQLite(db)

	boom := errors.New("boom")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_descriptors")).WillReturnError(boom)

	if err := repo.Save(context.Background(), plug()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestDescriptorSQLite_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := repository.NewDescriptorSQLite(db)

	raw, _ := json.Marshal(plug())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT descriptor FROM device_descriptors WHERE uuid=?")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"descriptor"}).AddRow(string(raw)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT descriptor FROM device_descriptors WHERE uuid=?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"descriptor"}))

	d, err := repo.Load(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d == nil || d.Type != "mss310" || d.Key != "" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
	ledger := d.Namespaces.ConsumptionX.ConsumptionX
	if len(ledger) != 1 || ledger[0].Value != 52 {
		t.Fatalf("ledger not restored: %+v", ledger)
	}

	d, err = repo.Load(context.Background(), "missing")
	if err != nil || d != nil {
		t.Fatalf("expected (nil, nil) for missing row, got (%+v, %v)", d, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDescriptorSQLite_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := repository.NewDescriptorSQLite(db)

	a, b := plug(), plug()
	b.UUID = "dev-2"
	rawA, _ := json.Marshal(a)
	rawB, _ := json.Marshal(b)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT descriptor FROM device_descriptors ORDER BY uuid ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"descriptor"}).AddRow(string(rawA)).AddRow(string(rawB)))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].UUID != "dev-1" || got[1].UUID != "dev-2" {
		t.Fatalf("unexpected list: %+v", got)
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT descriptor FROM device_descriptors ORDER BY uuid ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"descriptor"}).AddRow("{"))
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
