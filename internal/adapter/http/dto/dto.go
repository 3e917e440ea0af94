package dto

// CheckoutRequest is the request body for starting a checkout.
type CheckoutRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	ItemName string `json:"item_name" binding:"required,min=1,max=100"`
	Amount   string `json:"amount" binding:"required,amount"`
}

// CheckoutResponse is the response body for a created checkout: the gateway
// redirect target and the ordered form fields the client must post to it.
type CheckoutResponse struct {
	PurchaseID string      `json:"purchase_id"`
	ProcessURL string      `json:"process_url"`
	Fields     []FormField `json:"fields"`
}

// FormField is a single hidden input of the gateway redirect form. Order
// matters, so it is a slice and not a map.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PurchaseStatusResponse is the payload for client status polling. It is
// served as a bare object, not wrapped in the response envelope, because the
// storefront consumes it directly.
type PurchaseStatusResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Amount    string  `json:"amount"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	MealPlan  *string `json:"mealPlan,omitempty"`
}

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// PurchaseResponse is a single purchase row in the admin listing.
type PurchaseResponse struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	MealPlan         *string `json:"meal_plan,omitempty"`
	Amount           string  `json:"amount"`
	Status           string  `json:"status"`
	PaymentReference string  `json:"payment_reference,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// PurchaseListResponse wraps a paginated purchase list.
type PurchaseListResponse struct {
	Items      []PurchaseResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}
