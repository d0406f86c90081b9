// seed inserts an admin account, a shopper account and a starter
// catalog into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/flintandflours/storefront/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail   = "admin@flintandflours.local"
	shopperEmail = "shopper@flintandflours.local"
	seedPassword = "bakery123"
	seedAddress  = "42 Crust Lane, Mumbai"
)

type productSpec struct {
	name        string
	description string
	category    string
	basePrice   string // INR
	subEligible bool
	inStock     bool
	ingredients []string
}

var products = []productSpec{
	{"Sourdough Loaf", "Naturally leavened, 36-hour ferment.", "breads", "180.00", true, true,
		[]string{"flour", "water", "salt"}},
	{"Multigrain Bread", "Seven grains, seeded crust.", "breads", "160.00", true, true,
		[]string{"flour", "oats", "flax", "sunflower seeds"}},
	{"Chocolate Chip Cookies", "Box of six, dark couverture.", "cookies", "240.00", true, true,
		[]string{"flour", "butter", "dark chocolate", "sugar"}},
	{"Masala Khari", "Flaky spiced puff pastry sticks.", "snacks", "120.00", true, true,
		[]string{"flour", "butter", "cumin", "ajwain"}},
	{"Classic Victoria Sponge", "Strawberry jam and cream.", "cakes", "550.00", false, true,
		[]string{"flour", "eggs", "butter", "strawberry jam", "cream"}},
	{"Hazelnut Brownie", "Single-origin cocoa, roasted hazelnuts.", "cakes", "200.00", false, true,
		[]string{"cocoa", "butter", "hazelnuts", "sugar"}},
	{"Oat Digestives", "Box of ten, lightly sweetened.", "cookies", "190.00", true, false,
		[]string{"oats", "flour", "butter", "honey"}},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	upsertUser := `
		INSERT INTO users (email, password_hash, region, is_email_verified, is_admin)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (LOWER(email)) DO UPDATE SET updated_at = NOW()
		RETURNING id`

	var adminID, shopperID string
	if err := pool.QueryRow(ctx, upsertUser, adminEmail, string(hash), "India", true).Scan(&adminID); err != nil {
		log.Fatalf("upsert admin: %v", err)
	}
	if err := pool.QueryRow(ctx, upsertUser, shopperEmail, string(hash), "Canada", false).Scan(&shopperID); err != nil {
		log.Fatalf("upsert shopper: %v", err)
	}

	var inserted int
	var firstSubEligible string
	for _, p := range products {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO products (name, description, category, base_price, subscription_eligible, in_stock, ingredients)
			SELECT $1, $2, $3, $4::numeric, $5, $6, $7
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
			RETURNING id`,
			p.name, p.description, p.category, p.basePrice,
			p.subEligible, p.inStock, p.ingredients,
		).Scan(&id)
		if err != nil {
			// No row returned means the product already exists.
			continue
		}
		inserted++
		if firstSubEligible == "" && p.subEligible && p.inStock {
			firstSubEligible = id
		}
	}

	if firstSubEligible != "" {
		_, err = pool.Exec(ctx, `
			INSERT INTO subscriptions (user_email, product_id, quantity, cadence, region, delivery_address, next_run_at)
			VALUES ($1, $2, 1, 'weekly', 'India', $3, NOW())`,
			shopperEmail, firstSubEligible, seedAddress,
		)
		if err != nil {
			log.Fatalf("insert subscription: %v", err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Admin:    %s / %s\n", adminEmail, seedPassword)
	fmt.Printf("  Shopper:  %s / %s\n", shopperEmail, seedPassword)
	fmt.Printf("  Products: %d inserted\n", inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 - log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", shopperEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2 - browse and price a cart:")
	fmt.Println()
	fmt.Println("    curl -s 'http://localhost:8080/products?region=Canada'")
	fmt.Println("    curl -s -X POST http://localhost:8080/cart/price \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"region\":\"Canada\",\"items\":[{\"product_id\":\"PRODUCT_ID\",\"quantity\":2,\"subscription_type\":\"one-time\"}]}'")
	fmt.Println()
	fmt.Println("  Step 3 - check out (use the access token from step 1):")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s -X POST http://localhost:8080/checkout \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"region\":\"Canada\",\"items\":[...],\"delivery_address\":\"221B Maple St, Toronto\"}'")
}
