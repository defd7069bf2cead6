package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayError_Message(t *testing.T) {
	err := &GatewayError{
		Gateway:       "bkash",
		Operation:     "execute payment",
		StatusCode:    "2023",
		StatusMessage: "Insufficient Balance",
	}
	assert.Equal(t, "bkash execute payment failed: Insufficient Balance (2023)", err.Error())
}

func TestGatewayError_SurvivesWrapping(t *testing.T) {
	inner := &GatewayError{Gateway: "bkash", Operation: "refund payment", StatusCode: "2062"}
	wrapped := fmt.Errorf("refund flow: %w", inner)

	var ge *GatewayError
	require.True(t, errors.As(wrapped, &ge))
	assert.Equal(t, "2062", ge.StatusCode)
}
