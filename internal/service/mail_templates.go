package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
)

var buyerConfirmationTmpl = template.Must(template.New("buyer_confirmation").Parse(`
<h2>Thank you for your purchase!</h2>
<p>Your payment of <strong>R{{.Amount}}</strong>{{if .MealPlan}} for <strong>{{.MealPlan}}</strong>{{end}} has been received.</p>
<p>Your meal plan is now available in your account.</p>
<p>Payment reference: {{.PaymentReference}}</p>
`))

var operatorNoticeTmpl = template.Must(template.New("operator_notice").Parse(`
<h2>New meal plan purchase</h2>
<ul>
<li>Purchase: {{.ID}}</li>
<li>Buyer: {{.Email}}</li>
{{if .MealPlan}}<li>Plan: {{.MealPlan}}</li>{{end}}
<li>Amount: R{{.Amount}}</li>
<li>Gateway reference: {{.PaymentReference}}</li>
</ul>
`))

// buyerConfirmationBody renders the purchase confirmation email sent to the buyer.
func buyerConfirmationBody(p *domain.Purchase) (string, error) {
	var buf bytes.Buffer
	if err := buyerConfirmationTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering buyer confirmation: %w", err)
	}
	return buf.String(), nil
}

// operatorNoticeBody renders the new-purchase notice sent to operator recipients.
func operatorNoticeBody(p *domain.Purchase) (string, error) {
	var buf bytes.Buffer
	if err := operatorNoticeTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering operator notice: %w", err)
	}
	return buf.String(), nil
}
