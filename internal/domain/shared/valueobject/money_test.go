package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100000), IDR)
		require.NoError(t, err)
		assert.Equal(t, IDR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100000)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", IDR)
		assert.Error(t, err)
	})
}

func TestNewMoneyIDR(t *testing.T) {
	m := NewMoneyIDR(decimal.NewFromInt(5000000))
	assert.Equal(t, IDR, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(5000000)))
}

func TestNewMoneyIDRFromInt(t *testing.T) {
	m := NewMoneyIDRFromInt(2500000)
	assert.Equal(t, IDR, m.Currency())
	assert.Equal(t, int64(2500000), m.Amount().IntPart())
}

func TestNewMoneyIDRFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyIDRFromString("1500000")
		require.NoError(t, err)
		assert.Equal(t, IDR, m.Currency())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyIDRFromString("abc")
		assert.Error(t, err)
	})
}

func TestZero(t *testing.T) {
	z := ZeroIDR()
	assert.True(t, z.IsZero())
	assert.False(t, z.IsPositive())
	assert.False(t, z.IsNegative())
	assert.Equal(t, IDR, z.Currency())
}

func TestMoney_SignChecks(t *testing.T) {
	assert.True(t, NewMoneyIDRFromInt(100).IsPositive())
	assert.True(t, NewMoneyIDRFromInt(-100).IsNegative())
	assert.False(t, NewMoneyIDRFromInt(-100).IsPositive())
}

func TestMoney_Add(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		a := NewMoneyIDRFromInt(3000000)
		b := NewMoneyIDRFromInt(2000000)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(5000000)))
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		a := NewMoneyIDRFromInt(100)
		b, _ := NewMoney(decimal.NewFromInt(100), USD)

		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("MustAdd panics on mixed currencies", func(t *testing.T) {
		a := NewMoneyIDRFromInt(100)
		b, _ := NewMoney(decimal.NewFromInt(100), USD)

		assert.Panics(t, func() { a.MustAdd(b) })
	})
}

func TestMoney_Subtract(t *testing.T) {
	t.Run("subtracts same currency", func(t *testing.T) {
		a := NewMoneyIDRFromInt(5000000)
		b := NewMoneyIDRFromInt(3000000)

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(2000000)))
	})

	t.Run("result may be negative", func(t *testing.T) {
		a := NewMoneyIDRFromInt(1000000)
		b := NewMoneyIDRFromInt(1200000)

		diff := a.MustSubtract(b)
		assert.True(t, diff.IsNegative())
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(-200000)))
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		a := NewMoneyIDRFromInt(100)
		b, _ := NewMoney(decimal.NewFromInt(50), USD)

		_, err := a.Subtract(b)
		assert.Error(t, err)
	})
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyIDRFromInt(100)
	large := NewMoneyIDRFromInt(200)

	t.Run("Equals", func(t *testing.T) {
		assert.True(t, small.Equals(NewMoneyIDRFromInt(100)))
		assert.False(t, small.Equals(large))
	})

	t.Run("LessThan", func(t *testing.T) {
		lt, err := small.LessThan(large)
		require.NoError(t, err)
		assert.True(t, lt)
	})

	t.Run("GreaterThan", func(t *testing.T) {
		gt, err := large.GreaterThan(small)
		require.NoError(t, err)
		assert.True(t, gt)
	})

	t.Run("mixed currencies error", func(t *testing.T) {
		other, _ := NewMoney(decimal.NewFromInt(100), USD)
		_, err := small.LessThan(other)
		assert.Error(t, err)
	})
}

func TestMoney_ExactDecimalArithmetic(t *testing.T) {
	// The classic float trap: 0.1 + 0.2 == 0.3 must hold exactly
	a, _ := NewMoneyIDRFromString("0.1")
	b, _ := NewMoneyIDRFromString("0.2")
	c, _ := NewMoneyIDRFromString("0.3")

	assert.True(t, a.MustAdd(b).Equals(c))
	assert.True(t, c.MustSubtract(a).MustSubtract(b).IsZero())
}

func TestMoney_String(t *testing.T) {
	m := NewMoneyIDRFromInt(5000000)
	assert.Equal(t, "5000000.00 IDR", m.String())
	assert.Equal(t, "5000000", m.StringFixed(0))
}

func TestMoney_JSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := NewMoneyIDRFromInt(1500000)

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Money
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, original.Equals(decoded))
	})

	t.Run("invalid amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"oops","currency":"IDR"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("2500000"))
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(2500000)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans byte slice", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan([]byte("100.50")))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(struct{}{}))
	})
}

func TestMoney_Value(t *testing.T) {
	m := NewMoneyIDRFromInt(750000)
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "750000", v)
}
