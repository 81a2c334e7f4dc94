package db

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestInitAllTables(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	mock.ExpectExec(CreateAllTablesSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := InitAllTables(conn); err != nil {
		t.Fatalf("InitAllTables: %v", err)
	}

	mock.ExpectExec(DropAllTablesSQL).WillReturnError(errors.New("permission denied"))
	if err := DropAllTables(conn); err == nil {
		t.Fatal("DropAllTables 应返回错误")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListStates(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	updated := time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(StateSummarySQL).WillReturnRows(
		sqlmock.NewRows([]string{"key", "length", "updated_at"}).
			AddRow("tennisClubState", 120, updated).
			AddRow("weekend", 48, updated),
	)

	states, err := ListStates(conn)
	if err != nil {
		t.Fatalf("ListStates: %v", err)
	}
	if len(states) != 2 || states[0].Key != "tennisClubState" || states[0].Size != 120 || !states[1].UpdatedAt.Equal(updated) {
		t.Fatalf("states = %+v", states)
	}

	mock.ExpectQuery(StateSummarySQL).WillReturnError(errors.New("relation does not exist"))
	if _, err := ListStates(conn); err == nil {
		t.Fatal("查询失败应返回错误")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
