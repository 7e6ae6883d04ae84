package model

// Webhook payload shapes as the platform sends them. Fields are nullable
// where the platform omits them; the extract package normalizes these into
// the typed entities and nothing past ingestion touches the raw shapes.

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

type Customer struct {
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	DefaultAddress *Address `json:"default_address"`
}

type LineItem struct {
	Title            string `json:"title"`
	PresentmentTitle string `json:"presentment_title"`
	Quantity         int    `json:"quantity"`
	Price            string `json:"price"`
}

// WebhookPayload covers both checkout and order events; checkouts carry
// Token, orders carry CheckoutToken. Prices arrive as decimal strings.
type WebhookPayload struct {
	ID                   int64      `json:"id"`
	Token                string     `json:"token"`
	CheckoutToken        string     `json:"checkout_token"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone"`
	SMSMarketingPhone    string     `json:"sms_marketing_phone"`
	TotalPrice           string     `json:"total_price"`
	Currency             string     `json:"currency"`
	LineItems            []LineItem `json:"line_items"`
	AbandonedCheckoutURL string     `json:"abandoned_checkout_url"`
	CreatedAt            string     `json:"created_at"`
	Customer             *Customer  `json:"customer"`
	BillingAddress       *Address   `json:"billing_address"`
	ShippingAddress      *Address   `json:"shipping_address"`
}

type ProductVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type ProductImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type ProductPayload struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Tags        string           `json:"tags"`
	Status      string           `json:"status"`
	Images      []ProductImage   `json:"images"`
	Variants    []ProductVariant `json:"variants"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}
