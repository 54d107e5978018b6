package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillLeadStep1(c *Controller) {
	c.Set("leadName", "Guna Foods")
	c.Set("leadSource", "Website")
	c.Set("leadOwner", "Priya")
	c.Set("industry", "Food")
	c.Set("contactName", "Ravi")
	c.Set("email", "ravi@example.com")
}

func TestNextRejectsIncompleteStep(t *testing.T) {
	c := NewController(LeadDefinition())
	c.Set("leadName", "   ")

	err := c.Next()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrStepIncomplete)
	assert.Equal(t, 1, c.Current())

	errs := c.Errors()
	assert.Equal(t, "Lead name is required", errs["leadName"])
	assert.Equal(t, "Lead source is required", errs["leadSource"])
	assert.Equal(t, "At least one contact method (phone, mobile, or email) is required", errs[ContactGroupKey])
}

func TestSetClearsErrorsIncrementally(t *testing.T) {
	c := NewController(LeadDefinition())
	require.Error(t, c.Next())

	c.Set("leadName", "Guna Foods")
	errs := c.Errors()
	_, stillLeadName := errs["leadName"]
	assert.False(t, stillLeadName)
	assert.Contains(t, errs, "leadSource")
	assert.Contains(t, errs, ContactGroupKey)

	c.Set("mobile", "98450 00000")
	assert.NotContains(t, c.Errors(), ContactGroupKey)

	c.Set("industry", "")
	assert.Contains(t, c.Errors(), "industry", "an empty value keeps the error")
}

func TestRestoreDropsSatisfiedErrors(t *testing.T) {
	c := Restore(LeadDefinition(), map[string]any{
		"leadName": "Guna Foods",
		"mobile":   "98450 00000",
		"industry": " ",
	}, 1, map[string]string{
		"leadName":      "Lead name is required",
		"industry":      "Industry is required",
		ContactGroupKey: "At least one contact method (phone, mobile, or email) is required",
	})

	errs := c.Errors()
	assert.NotContains(t, errs, "leadName")
	assert.NotContains(t, errs, ContactGroupKey)
	assert.Contains(t, errs, "industry")
}

func TestNextAdvancesExactlyOneStep(t *testing.T) {
	c := NewController(LeadDefinition())
	fillLeadStep1(c)
	require.NoError(t, c.Next())
	assert.Equal(t, 2, c.Current())

	err := c.Next()
	require.Error(t, err)
	assert.Equal(t, "Primary product interest is required", c.Errors()["primaryProduct"])
	assert.Equal(t, "Estimated deal value is required", c.Errors()["estimatedValue"])
	assert.Equal(t, 2, c.Current())
}

func TestPreviousNeverValidates(t *testing.T) {
	c := Restore(LeadDefinition(), nil, 3, nil)
	c.Previous()
	assert.Equal(t, 2, c.Current())
	assert.Empty(t, c.Errors())
	c.Previous()
	c.Previous()
	assert.Equal(t, 1, c.Current())
}

func TestSubmitOnlyFromFinalStep(t *testing.T) {
	c := NewController(ProductDefinition())
	called := false
	err := c.Submit(context.Background(), func(context.Context, map[string]any) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFinalStep)
	assert.False(t, called)

	restored := Restore(ProductDefinition(), nil, 1, nil)
	assert.ErrorIs(t, restored.Submit(context.Background(), func(context.Context, map[string]any) error {
		called = true
		return nil
	}), ErrNotFinalStep)
	assert.False(t, called)
}

func TestSubmitReplaysAllSteps(t *testing.T) {
	c := Restore(ProductDefinition(), map[string]any{"price": "1200"}, 2, nil)
	called := false
	err := c.Submit(context.Background(), func(context.Context, map[string]any) error {
		called = true
		return nil
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Step)
	assert.Contains(t, verr.Errors, "productName")
	assert.Contains(t, verr.Errors, "category")
	assert.False(t, called)
}

func TestSubmitPersistFailureKeepsState(t *testing.T) {
	c := NewController(ProductDefinition())
	c.Set("productName", "RO Purifier")
	c.Set("category", "Purifiers")
	require.NoError(t, c.Next())
	c.Set("price", "15000")

	boom := errors.New("db down")
	err := c.Submit(context.Background(), func(_ context.Context, values map[string]any) error {
		assert.Equal(t, "RO Purifier", values["productName"])
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, c.Current())
	assert.Equal(t, "15000", c.Value("price"))

	var stored map[string]any
	require.NoError(t, c.Submit(context.Background(), func(_ context.Context, values map[string]any) error {
		stored = values
		return nil
	}))
	assert.Equal(t, "Purifiers", stored["category"])
}

func TestAccountStepThreeRequiresArrays(t *testing.T) {
	c := Restore(AccountDefinition(), map[string]any{
		"accountName": "Acme",
		"industry":    "Pharma",
		"contacts":    []any{},
	}, 3, nil)

	require.Error(t, c.Next())
	assert.Equal(t, "At least one contact is required", c.Errors()["contacts"])
	assert.Equal(t, "At least one address is required", c.Errors()["addresses"])

	c.Set("contacts", []any{map[string]any{"firstName": "Asha"}})
	c.Set("addresses", []any{map[string]any{"city": "Pune"}})
	require.NoError(t, c.Next())
	assert.True(t, c.IsFinalStep())
}

func TestArrayItems(t *testing.T) {
	c := NewController(LeadDefinition())
	assert.True(t, c.AddItem("tags", " hot "))
	assert.False(t, c.AddItem("tags", "hot"))
	assert.False(t, c.AddItem("tags", "  "))
	assert.True(t, c.AddItem("tags", "pharma"))
	assert.Equal(t, []string{"hot", "pharma"}, c.Value("tags"))

	c.RemoveItem("tags", "hot")
	assert.Equal(t, []string{"pharma"}, c.Value("tags"))
}

func TestLookup(t *testing.T) {
	def, ok := Lookup(" Lead ")
	require.True(t, ok)
	assert.Equal(t, 4, def.TotalSteps())

	def, ok = Lookup("product")
	require.True(t, ok)
	assert.Equal(t, 2, def.TotalSteps())

	_, ok = Lookup("invoice")
	assert.False(t, ok)
}

func TestSatisfied(t *testing.T) {
	assert.False(t, Satisfied(nil))
	assert.False(t, Satisfied(" \t"))
	assert.False(t, Satisfied([]string{}))
	assert.True(t, Satisfied("x"))
	assert.True(t, Satisfied(float64(0)))
	assert.True(t, Satisfied([]any{"a"}))
}

func TestPayloadMapsKeys(t *testing.T) {
	values := map[string]any{
		"leadName":          "Acme",
		"leadOwner":         "u-1",
		"closingDate":       "2025-09-30",
		"estimatedValue":    "150000",
		"secondaryProducts": []any{"CCTV", "UPS"},
		"contactTitle":      "CTO",
	}

	out := Payload(LeadDefinition(), values)

	assert.Equal(t, "Acme", out["lead_name"])
	assert.Equal(t, "u-1", out["assigned_to"])
	assert.Equal(t, "2025-09-30", out["expected_closing_date"])
	assert.Equal(t, json.Number("150000"), out["estimated_value"])
	assert.Equal(t, []string{"CCTV", "UPS"}, out["secondary_products"])
	assert.Equal(t, "CTO", out["contact_title"])
}

func TestPayloadKeepsObjectArrays(t *testing.T) {
	contacts := []any{map[string]any{"name": "Ravi"}}
	out := Payload(AccountDefinition(), map[string]any{"contacts": contacts, "employeeCount": ""})

	assert.Equal(t, contacts, out["contacts"])
	assert.Nil(t, out["employee_count"])
}
