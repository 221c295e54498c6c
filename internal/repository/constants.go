package repository

// Column lists shared across queries so SELECTs stay in sync with the
// model structs.
const (
	cabinColumns = `
		id, short_code, name, area, max_adults, max_kids, features,
		base_price_night, weekend_price, images_urls, calendar_id,
		street, city, postal_code, created_at, updated_at
	`

	customerColumns = `id, name, email, phone, created_at`

	bookingColumns = `
		id, cabin_id, customer_id, check_in, check_out, adults, kids,
		total_price, status, event_id, event_link, created_at, updated_at
	`

	transactionColumns = `
		id, booking_id, payment_id, amount, currency, status,
		payment_method, created_at, updated_at
	`

	quoteColumns = `
		id, cabin_id, check_in, check_out, adults, kids, total_price,
		quote_data, created_at
	`

	faqColumns = `
		id, question, answer, approved, suggested_answer, suggested_by,
		approved_by, approved_at, usage_count, created_at, updated_at
	`

	factColumns = `
		id, fact_key, fact_value, category, description, is_active,
		created_at, updated_at
	`
)
