package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"amount": "1500.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypePaid, EntityTypeInstallment, payload)
	after := time.Now()

	assert.Equal(t, "installment.paid", evt.Type)
	assert.Equal(t, EntityTypeInstallment, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"id": float64(42),
	}

	evt := NewEvent(EventTypeClosed, EntityTypeLoan, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "loan.closed", decoded["type"])
	assert.Equal(t, "loan", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":     float64(1),
		"loanId": float64(7),
	}

	t.Run("InstallmentPaid", func(t *testing.T) {
		evt := InstallmentPaid(payload)
		assert.Equal(t, "installment.paid", evt.Type)
		assert.Equal(t, EntityTypeInstallment, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("InstallmentMissed", func(t *testing.T) {
		evt := InstallmentMissed(payload)
		assert.Equal(t, "installment.missed", evt.Type)
		assert.Equal(t, EntityTypeInstallment, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("LoanCreated", func(t *testing.T) {
		evt := LoanCreated(payload)
		assert.Equal(t, "loan.created", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("LoanClosed", func(t *testing.T) {
		evt := LoanClosed(payload)
		assert.Equal(t, "loan.closed", evt.Type)
		assert.Equal(t, EntityTypeLoan, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("BorrowerCreated", func(t *testing.T) {
		evt := BorrowerCreated(payload)
		assert.Equal(t, "borrower.created", evt.Type)
		assert.Equal(t, EntityTypeBorrower, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}
