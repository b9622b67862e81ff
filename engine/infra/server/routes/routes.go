package routes

// Base is the API prefix every route hangs off.
func Base() string {
	return "/api"
}

func Customers() string {
	return Base() + "/customers"
}

func Staff() string {
	return Base() + "/staff"
}

func Memberships() string {
	return Base() + "/membership-requests"
}

func Estimates() string {
	return Base() + "/estimates"
}

func Events() string {
	return Base() + "/events"
}

func Health() string {
	return Base() + "/health"
}
