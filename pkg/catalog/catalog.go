// Package catalog holds the demo product inventory served by the shell
// and used to seed carts. The data is static; a real deployment would
// swap this for a product service client.
package catalog

import (
	"strings"

	"github.com/fragsync-dev/fragsync/pkg/state"
)

// Product is a sellable item in the demo inventory.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	InStock     bool    `json:"inStock"`
	Rating      float64 `json:"rating"`
}

// CartLine converts the product into a cart line with the given
// quantity.
func (p Product) CartLine(quantity int) state.CartLine {
	return state.CartLine{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: quantity,
		Image:    p.Image,
		Category: p.Category,
	}
}

// Categories lists the known category slugs in display order.
func Categories() []string {
	return []string{"home", "clothing", "electronics", "mobiles", "books"}
}

// All returns every product. The slice is a copy.
func All() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ByCategory returns the products in the given category slug.
func ByCategory(category string) []Product {
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks a product up by its ID.
func ByID(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Search matches query case-insensitively against name and description.
func Search(query string) []Product {
	q := strings.ToLower(query)
	var out []Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

var products = []Product{
	{
		ID: "home-1", Name: "Modern Coffee Table", Price: 299.99,
		Image:       "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400",
		Category:    "home",
		Description: "Elegant modern coffee table for your living room",
		InStock:     true, Rating: 4.6,
	},
	{
		ID: "home-2", Name: "Smart LED Bulb Set", Price: 49.99,
		Image:       "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?w=400",
		Category:    "home",
		Description: "WiFi-enabled smart LED bulbs with voice control",
		InStock:     true, Rating: 4.4,
	},
	{
		ID: "home-3", Name: "Kitchen Blender", Price: 89.99,
		Image:       "https://images.unsplash.com/photo-1570197788417-0e82375c9371?w=400",
		Category:    "home",
		Description: "High-performance kitchen blender for smoothies and soups",
		InStock:     true, Rating: 4.7,
	},
	{
		ID: "home-4", Name: "Garden Plant Pot Set", Price: 34.99,
		Image:       "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=400",
		Category:    "home",
		Description: "Beautiful ceramic plant pots for indoor and outdoor plants",
		InStock:     false, Rating: 4.3,
	},
	{
		ID: "home-5", Name: "Wall Clock", Price: 24.99,
		Image:       "https://images.unsplash.com/photo-1563861826100-9cb868fdbe1c?w=400",
		Category:    "home",
		Description: "Minimalist wall clock with silent movement",
		InStock:     true, Rating: 4.5,
	},
	{
		ID: "clothing-1", Name: "Cotton T-Shirt", Price: 29.99,
		Image:       "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400",
		Category:    "clothing",
		Description: "Comfortable cotton t-shirt perfect for everyday wear",
		InStock:     true, Rating: 4.5,
	},
	{
		ID: "clothing-2", Name: "Denim Jeans", Price: 79.99,
		Image:       "https://images.unsplash.com/photo-1542272604-787c3835535d?w=400",
		Category:    "clothing",
		Description: "Classic blue denim jeans with modern fit",
		InStock:     true, Rating: 4.2,
	},
	{
		ID: "clothing-3", Name: "Leather Jacket", Price: 199.99,
		Image:       "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400",
		Category:    "clothing",
		Description: "Premium leather jacket for style and warmth",
		InStock:     false, Rating: 4.8,
	},
	{
		ID: "clothing-4", Name: "Running Shoes", Price: 129.99,
		Image:       "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400",
		Category:    "clothing",
		Description: "Lightweight running shoes for optimal performance",
		InStock:     true, Rating: 4.6,
	},
	{
		ID: "clothing-5", Name: "Wool Sweater", Price: 89.99,
		Image:       "https://images.unsplash.com/photo-1576566588028-4147f3842f27?w=400",
		Category:    "clothing",
		Description: "Warm wool sweater for cold weather",
		InStock:     true, Rating: 4.3,
	},
	{
		ID: "electronics-1", Name: "Wireless Headphones", Price: 299.99,
		Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400",
		Category:    "electronics",
		Description: "High-quality wireless headphones with noise cancellation",
		InStock:     true, Rating: 4.7,
	},
	{
		ID: "electronics-2", Name: "Laptop Computer", Price: 1299.99,
		Image:       "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=400",
		Category:    "electronics",
		Description: "Powerful laptop for work and entertainment",
		InStock:     true, Rating: 4.4,
	},
	{
		ID: "electronics-3", Name: "Smart Watch", Price: 399.99,
		Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400",
		Category:    "electronics",
		Description: "Advanced smartwatch with health monitoring",
		InStock:     true, Rating: 4.5,
	},
	{
		ID: "electronics-4", Name: "Digital Camera", Price: 899.99,
		Image:       "https://images.unsplash.com/photo-1502920917128-1aa500764cbd?w=400",
		Category:    "electronics",
		Description: "Professional digital camera for photography",
		InStock:     false, Rating: 4.9,
	},
	{
		ID: "electronics-5", Name: "Tablet Device", Price: 499.99,
		Image:       "https://images.unsplash.com/photo-1561154464-82e9adf32764?w=400",
		Category:    "electronics",
		Description: "Versatile tablet for work and entertainment",
		InStock:     true, Rating: 4.3,
	},
	{
		ID: "mobiles-1", Name: "iPhone 15 Pro", Price: 999.99,
		Image:       "https://images.unsplash.com/photo-1592899677977-9c10ca588bbd?w=400",
		Category:    "mobiles",
		Description: "Latest iPhone with advanced features",
		InStock:     true, Rating: 4.8,
	},
	{
		ID: "mobiles-2", Name: "Samsung Galaxy S24", Price: 899.99,
		Image:       "https://images.unsplash.com/photo-1610945415295-d9bbf067e59c?w=400",
		Category:    "mobiles",
		Description: "Premium Android smartphone",
		InStock:     true, Rating: 4.6,
	},
	{
		ID: "mobiles-3", Name: "Google Pixel 8", Price: 699.99,
		Image:       "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=400",
		Category:    "mobiles",
		Description: "Google smartphone with AI features",
		InStock:     true, Rating: 4.5,
	},
	{
		ID: "mobiles-4", Name: "Phone Case", Price: 29.99,
		Image:       "https://images.unsplash.com/photo-1601972599720-df8dbe93b9f9?w=400",
		Category:    "mobiles",
		Description: "Protective phone case with style",
		InStock:     true, Rating: 4.2,
	},
	{
		ID: "mobiles-5", Name: "Wireless Charger", Price: 49.99,
		Image:       "https://images.unsplash.com/photo-1609592106529-b8b9c7b4a7b4?w=400",
		Category:    "mobiles",
		Description: "Fast wireless charging pad",
		InStock:     true, Rating: 4.4,
	},
	{
		ID: "books-1", Name: "The Great Gatsby", Price: 14.99,
		Image:       "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400",
		Category:    "books",
		Description: "Classic American novel by F. Scott Fitzgerald",
		InStock:     true, Rating: 4.7,
	},
	{
		ID: "books-2", Name: "Programming Guide", Price: 39.99,
		Image:       "https://images.unsplash.com/photo-1515879218367-8466d910aaa4?w=400",
		Category:    "books",
		Description: "Complete guide to modern programming",
		InStock:     true, Rating: 4.5,
	},
	{
		ID: "books-3", Name: "Mystery Novel", Price: 19.99,
		Image:       "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400",
		Category:    "books",
		Description: "Thrilling mystery novel that keeps you guessing",
		InStock:     true, Rating: 4.3,
	},
	{
		ID: "books-4", Name: "Science Textbook", Price: 89.99,
		Image:       "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400",
		Category:    "books",
		Description: "Comprehensive science textbook for students",
		InStock:     false, Rating: 4.6,
	},
	{
		ID: "books-5", Name: "Fiction Collection", Price: 24.99,
		Image:       "https://images.unsplash.com/photo-1524995997946-a1c2e315a42f?w=400",
		Category:    "books",
		Description: "Collection of short fiction stories",
		InStock:     true, Rating: 4.4,
	},
}
