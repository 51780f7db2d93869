package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestUpsertProfileEncodesVector(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO user_profiles`).
		WithArgs("user-1", pq.Array([]string{"go", "postgres"}), "[0.5,-0.25,1]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.UpsertProfile(context.Background(), "user-1", []string{"go", "postgres"}, []float32{0.5, -0.25, 1})
	if err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertProfileEmptyVectorStoresNull(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO user_profiles`).
		WithArgs("user-1", pq.Array([]string{}), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.UpsertProfile(context.Background(), "user-1", []string{}, nil); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSkillVectorAbsentProfileIsNil(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT skill_vector::text FROM user_profiles`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"skill_vector"}))

	vec, err := st.SkillVector(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SkillVector: %v", err)
	}
	if vec != nil {
		t.Fatalf("expected nil vector got %v", vec)
	}
}

func TestSkillVectorDecodesLiteral(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT skill_vector::text FROM user_profiles`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"skill_vector"}).AddRow("[0.5,-0.25,1]"))

	vec, err := st.SkillVector(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SkillVector: %v", err)
	}
	want := []float32{0.5, -0.25, 1}
	if len(vec) != len(want) {
		t.Fatalf("expected %v got %v", want, vec)
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("expected %v got %v", want, vec)
		}
	}
}

func TestGetProfileNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT skills, skill_vector::text, updated_at FROM user_profiles`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"skills", "skill_vector", "updated_at"}))

	_, err := st.GetProfile(context.Background(), "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestGetProfileScansSkills(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT skills, skill_vector::text, updated_at FROM user_profiles`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"skills", "skill_vector", "updated_at"}).
			AddRow("{go,sql}", "[1,0]", time.Now()))

	p, err := st.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "go" {
		t.Fatalf("unexpected skills: %v", p.Skills)
	}
	if len(p.SkillVector) != 2 {
		t.Fatalf("unexpected vector: %v", p.SkillVector)
	}
}
