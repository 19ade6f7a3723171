package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/danielgtaylor/huma/v2"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

func TestRefreshIssuesNewToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	j := NewJWT("secret", time.Minute)
	tok, err := j.Generate(7, "t1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, username, password_hash, tenant_id FROM reftab_users WHERE id=?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "tenant_id"}).
			AddRow(7, "alice", "x", "t1"))

	h := &Handler{Repo: &UserRepo{DB: db, Dialect: ormdriver.MySQLDialect{}}, JWT: j}
	out, err := h.refresh(context.Background(), &refreshInput{Authorization: "Bearer " + tok})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := j.Validate(out.Body.AccessToken)
	if err != nil {
		t.Fatalf("validate refreshed token: %v", err)
	}
	if claims.Subject != "7" || claims.GetTenantID() != "t1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	h := &Handler{Repo: &UserRepo{}, JWT: NewJWT("secret", time.Minute)}
	for _, header := range []string{"", "Bearer ", "Bearer not-a-token", "no-scheme"} {
		_, err := h.refresh(context.Background(), &refreshInput{Authorization: header})
		var se huma.StatusError
		if !errors.As(err, &se) || se.GetStatus() != 401 {
			t.Fatalf("header %q: want 401, got %v", header, err)
		}
	}
}
