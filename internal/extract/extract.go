// Package extract derives contact details from webhook payloads. All
// functions are total: missing data yields a fallback value, never an error.
package extract

import (
	"strings"

	"cart-recovery-service/internal/model"
)

// PhoneNumber probes the candidate phone fields in precedence order and
// returns the first non-empty trimmed value. The direct payload field wins
// over nested customer fields. ok is false when no candidate is set.
func PhoneNumber(p *model.WebhookPayload) (phone string, ok bool) {
	candidates := make([]string, 0, 6)
	candidates = append(candidates, p.Phone)
	if p.Customer != nil {
		candidates = append(candidates, p.Customer.Phone)
		if p.Customer.DefaultAddress != nil {
			candidates = append(candidates, p.Customer.DefaultAddress.Phone)
		}
	}
	if p.BillingAddress != nil {
		candidates = append(candidates, p.BillingAddress.Phone)
	}
	if p.ShippingAddress != nil {
		candidates = append(candidates, p.ShippingAddress.Phone)
	}
	candidates = append(candidates, p.SMSMarketingPhone)

	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// CustomerName prefers a first+last name pair from the customer record or
// the billing address, then a full-name field, then "Customer".
func CustomerName(p *model.WebhookPayload) string {
	var first, last, full string
	if p.Customer != nil {
		first = p.Customer.FirstName
		last = p.Customer.LastName
		if p.Customer.DefaultAddress != nil {
			full = p.Customer.DefaultAddress.Name
		}
	}
	if p.BillingAddress != nil {
		if first == "" {
			first = p.BillingAddress.FirstName
		}
		if last == "" {
			last = p.BillingAddress.LastName
		}
		if full == "" {
			full = p.BillingAddress.Name
		}
	}

	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	if full != "" {
		return full
	}
	return "Customer"
}

// Email returns the top-level email, falling back to the customer record.
func Email(p *model.WebhookPayload) string {
	if p.Email != "" {
		return p.Email
	}
	if p.Customer != nil {
		return p.Customer.Email
	}
	return ""
}

// ProductNames joins the line item titles with ", ". Items without a title
// fall back to the presentment title, then "Product"; an empty list yields
// "Product".
func ProductNames(items []model.LineItem) string {
	if len(items) == 0 {
		return "Product"
	}
	titles := make([]string, len(items))
	for i, item := range items {
		title := item.Title
		if title == "" {
			title = item.PresentmentTitle
		}
		if title == "" {
			title = "Product"
		}
		titles[i] = title
	}
	return strings.Join(titles, ", ")
}
