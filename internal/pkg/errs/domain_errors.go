package errs

// Cart engine error taxonomy. Callers classify with errors.Is; the HTTP layer
// maps each sentinel to a status code.
var (
	// Lookup
	ErrCartNotFound = New("cart not found")
	ErrItemNotFound = New("cart item not found")

	// Lifecycle
	ErrCartNotMutable = New("cart is not mutable")
	ErrCartExpired    = New("cart has expired")

	// Input validation
	ErrInvalidQuantity   = New("invalid quantity")
	ErrInvalidPrice      = New("invalid unit price")
	ErrInvalidOwner      = New("invalid cart owner")
	ErrInvalidCurrency   = New("invalid currency")
	ErrInvalidAttributes = New("invalid item attributes")
	ErrInvalidAddress    = New("invalid shipping address")
	ErrCurrencyMismatch  = New("currency mismatch")
	ErrSameCart          = New("source and target cart are the same")

	// Coupons
	ErrInvalidCoupon = New("invalid coupon")

	// Checkout
	ErrCheckoutPrecondition = New("checkout precondition failed")

	// Concurrency and collaborators
	ErrConcurrentModification = New("concurrent modification")
	ErrCollaboratorTimeout    = New("collaborator timed out")
	ErrCollaboratorFailure    = New("collaborator failed")

	// Idempotency
	ErrIdempotencyInProgress = New("idempotency key in use")
)
