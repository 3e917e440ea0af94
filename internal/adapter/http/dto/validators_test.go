package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

// bindingValidate runs a struct through the same validator gin binding uses.
func bindingValidate(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		amount string
		valid  bool
	}{
		{"450.00", true},
		{"450", true},
		{"0.01", true},
		{"0", false},
		{"-10.00", false},
		{"10.005", false},
		{"abc", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			req := CheckoutRequest{
				Email:    "buyer@example.com",
				ItemName: "12 Week Meal Plan",
				Amount:   tc.amount,
			}
			err := bindingValidate(&req)
			if tc.valid {
				assert.NoError(t, err, "amount %q should validate", tc.amount)
			} else {
				assert.Error(t, err, "amount %q should fail", tc.amount)
			}
		})
	}
}

func TestCheckoutRequest_RequiresEmail(t *testing.T) {
	req := CheckoutRequest{ItemName: "Plan", Amount: "100.00"}
	assert.Error(t, bindingValidate(&req))

	req.Email = "not-an-email"
	assert.Error(t, bindingValidate(&req))

	req.Email = "buyer@example.com"
	assert.NoError(t, bindingValidate(&req))
}

func TestSanitizeStruct(t *testing.T) {
	req := CheckoutRequest{
		Email:    "  buyer@example.com  ",
		ItemName: `<b>Plan</b>`,
		Amount:   "100.00",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "buyer@example.com", req.Email)
	assert.NotContains(t, req.ItemName, "<b>")
}

func TestSanitizeStruct_PointerField(t *testing.T) {
	plan := "  <i>plan</i>  "
	row := PurchaseResponse{MealPlan: &plan}
	SanitizeStruct(&row)

	assert.Equal(t, "&lt;i&gt;plan&lt;/i&gt;", *row.MealPlan)
}
