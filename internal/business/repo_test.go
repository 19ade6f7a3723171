package business

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
)

func TestListOrdersByCreation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sqlStr, _, _ := query.New(db, "reftab_businesses", ormdriver.MySQLDialect{}).
		Select("id", "tenant_id", "name", "created_at").
		Where("tenant_id", "t1").
		OrderBy("created_at", "asc").
		Build()
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "created_at"}).
		AddRow("b1", "t1", "Alpha Corp", time.Now().Add(-time.Hour)).
		AddRow("b2", "t1", "Beta LLC", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(sqlStr)).WithArgs("t1").WillReturnRows(rows)

	repo := &Repo{DB: db, Dialect: ormdriver.MySQLDialect{}}
	got, err := repo.List(context.Background(), "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b1" || got[1].Name != "Beta LLC" {
		t.Fatalf("unexpected businesses: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListBusinessesAdaptsModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sqlStr, _, _ := query.New(db, "reftab_businesses", ormdriver.MySQLDialect{}).
		Select("id", "tenant_id", "name", "created_at").
		Where("tenant_id", "t1").
		OrderBy("created_at", "asc").
		Build()
	mock.ExpectQuery(regexp.QuoteMeta(sqlStr)).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "created_at"}).
			AddRow("b1", "t1", "Alpha Corp", time.Now()))

	repo := &Repo{DB: db, Dialect: ormdriver.MySQLDialect{}}
	got, err := repo.ListBusinesses(context.Background(), "t1")
	if err != nil {
		t.Fatalf("list businesses: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b1" || got[0].Name != "Alpha Corp" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCreateInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reftab_businesses (id, tenant_id, name, created_at) VALUES (?,?,?,?)")).
		WithArgs(sqlmock.AnyArg(), "t1", "Alpha Corp", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &Repo{DB: db, Dialect: ormdriver.MySQLDialect{}}
	b, err := repo.Create(context.Background(), "t1", "Alpha Corp")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == "" || b.TenantID != "t1" {
		t.Fatalf("unexpected business: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
