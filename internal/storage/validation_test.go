package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger/internal/common"
)

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		wantErr  bool
	}{
		{name: "first page", page: 0, pageSize: 15},
		{name: "later page", page: 7, pageSize: 1},
		{name: "negative page", page: -1, pageSize: 15, wantErr: true},
		{name: "zero size", page: 0, pageSize: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePage(tt.page, tt.pageSize)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	jan := day(2024, 1, 1)
	feb := day(2024, 2, 1)

	require.NoError(t, validateDateRange(jan, feb))
	require.NoError(t, validateDateRange(jan, jan))
	require.NoError(t, validateDateRange(time.Time{}, jan))
	require.NoError(t, validateDateRange(feb, time.Time{}))

	err := validateDateRange(feb, jan)
	require.ErrorIs(t, err, common.ErrValidation)
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, pageCount(0, 15))
	assert.Equal(t, 1, pageCount(1, 15))
	assert.Equal(t, 1, pageCount(15, 15))
	assert.Equal(t, 2, pageCount(16, 15))
}

func TestBindValue(t *testing.T) {
	assert.Equal(t, "2024-05-06", bindValue(time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "x", bindValue("x"))
	assert.Nil(t, bindValue(nil))
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))
	assert.ErrorIs(t, classifyError(errors.New("FOREIGN KEY constraint failed")), common.ErrConstraint)
	assert.ErrorIs(t, classifyError(errors.New("CHECK constraint failed: kind")), common.ErrValidation)
	assert.ErrorIs(t, classifyError(errors.New("NOT NULL constraint failed: category.name")), common.ErrValidation)

	other := errors.New("disk I/O error")
	assert.Equal(t, other, classifyError(other))
}
