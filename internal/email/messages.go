package email

import (
	"fmt"
	"strings"

	"github.com/flintandflours/storefront/internal/domain"
)

// Transactional message bodies for the Flint & Flours storefront.

func VerificationMessage(baseURL, rawToken string) (subject, body string) {
	link := baseURL + "/verify-email?token=" + rawToken
	subject = "Welcome to Flint & Flours - Verify Your Email"
	body = fmt.Sprintf(
		`<h2>Welcome to our artisan bakery family!</h2>
<p>To complete your registration, please verify your email address (the link expires in 24 hours):</p>
<p><a href="%s">Verify My Email</a></p>
<p>If you didn't create an account with us, please ignore this email.</p>`,
		link,
	)
	return subject, body
}

func PasswordResetMessage(baseURL, rawToken string) (subject, body string) {
	link := baseURL + "/reset-password?token=" + rawToken
	subject = "Reset Your Flint & Flours Password"
	body = fmt.Sprintf(
		`<h2>Reset Your Password</h2>
<p>We received a request to reset the password for your Flint &amp; Flours account (the link expires in 1 hour):</p>
<p><a href="%s">Reset My Password</a></p>
<p>If you didn't request a reset, ignore this email and your password stays unchanged.</p>`,
		link,
	)
	return subject, body
}

func OrderConfirmationMessage(order *domain.Order) (subject, body string) {
	subject = fmt.Sprintf("Order Confirmation #%s - Flint & Flours", order.ID)

	var items strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&items, "<li>%s x %d - %s %s</li>",
			item.Name, item.Quantity, order.Currency, item.TotalPrice.StringFixed(2))
	}

	body = fmt.Sprintf(
		`<h2>Thank you for your order!</h2>
<p>We'll begin preparing your artisan baked goods with care.</p>
<ul>%s</ul>
<p><strong>Total: %s %s</strong> (incl. tax %s %s)</p>
<p>Delivering to: %s</p>`,
		items.String(),
		order.Currency, order.Total.StringFixed(2),
		order.Currency, order.Tax.StringFixed(2),
		order.DeliveryAddress,
	)
	return subject, body
}

func ShippingUpdateMessage(order *domain.Order) (subject, body string) {
	subject = "Your Order is On Its Way! - Flint & Flours"

	tracking := "We'll share tracking details shortly."
	if order.TrackingLink != nil && *order.TrackingLink != "" {
		tracking = fmt.Sprintf(`<a href="%s">Track Your Order</a>`, *order.TrackingLink)
	}

	body = fmt.Sprintf(
		`<h2>Great news! Your order is on its way</h2>
<p>Order #%s has been shipped and is heading to your doorstep.</p>
<p>%s</p>`,
		order.ID, tracking,
	)
	return subject, body
}
