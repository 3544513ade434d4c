package config

import "time"

// Persona identifies a selectable dashboard profile.
type Persona struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ConfigurationID string `json:"configurationId"`
}

// FallbackUserID is the persona served when resolution fails.
const FallbackUserID = "fallback-user"

// Fallback returns the built-in dashboard layout used when no
// configuration can be resolved. Every deployment can render this
// layout regardless of what fragsync.json says.
func Fallback() Dashboard {
	return Dashboard{
		UserID:  FallbackUserID,
		Version: "1.0.0",
		Theme:   "light",
		Layout:  "default",
		Modules: []Module{
			{
				Name: "dashboard", DisplayName: "Dashboard", Path: "/",
				Component: "Dashboard", Enabled: true, Order: 1,
				Icon: "📊", Description: "Main dashboard view", Category: "core",
			},
			{
				Name: "profile", DisplayName: "Profile", Path: "/profile",
				Component: "Profile", Enabled: true, Order: 2,
				Icon: "👤", Description: "User profile management", Category: "user",
			},
			{
				Name: "cart", DisplayName: "Cart", Path: "/cart",
				Component: "Cart", Enabled: true, Order: 3,
				Icon: "🛒", Description: "Shopping cart", Category: "shopping",
			},
			{
				Name: "orders", DisplayName: "Orders", Path: "/orders",
				Component: "Orders", Enabled: true, Order: 4,
				Icon: "📦", Description: "Order history", Category: "shopping",
			},
		},
		Features: map[string]bool{
			"analytics":       false,
			"personalization": false,
			"notifications":   true,
		},
	}
}

// builtinPersonas are the personas available without an external
// persona document.
var builtinPersonas = []Persona{
	{
		ID:              "default-user",
		Name:            "Default User",
		Description:     "Standard user with balanced features",
		ConfigurationID: "config-default-user",
	},
	{
		ID:              "power-user",
		Name:            "Power User",
		Description:     "Advanced user with every module enabled",
		ConfigurationID: "config-power-user",
	},
	{
		ID:              "basic-user",
		Name:            "Basic User",
		Description:     "Simple user with minimal features",
		ConfigurationID: "config-basic-user",
	},
	{
		ID:              FallbackUserID,
		Name:            "Fallback User",
		Description:     "Fallback configuration when APIs fail",
		ConfigurationID: "fallback",
	},
}

// builtinConfigs maps persona IDs to their dashboard layouts.
func builtinConfigs() map[string]Dashboard {
	now := time.Now()

	defaultUser := Fallback()
	defaultUser.UserID = "default-user"
	defaultUser.LastUpdated = now
	defaultUser.Features["personalization"] = true

	powerUser := Fallback()
	powerUser.UserID = "power-user"
	powerUser.Theme = "dark"
	powerUser.LastUpdated = now
	powerUser.Features["analytics"] = true
	powerUser.Features["personalization"] = true
	powerUser.Modules = append(powerUser.Modules,
		Module{
			Name: "payments", DisplayName: "Payments", Path: "/payments",
			Component: "Payments", Enabled: true, Order: 5,
			Icon: "💳", Description: "Payment methods", Category: "shopping",
		},
	)

	basicUser := Fallback()
	basicUser.UserID = "basic-user"
	basicUser.LastUpdated = now
	basicUser.Modules = basicUser.Modules[:2]

	return map[string]Dashboard{
		"default-user": defaultUser,
		"power-user":   powerUser,
		"basic-user":   basicUser,
		FallbackUserID: Fallback(),
	}
}
