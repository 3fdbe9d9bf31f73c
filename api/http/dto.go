package http

// Request and response shapes for the JSON API.

type registerPairRequest struct {
	Base  string `json:"base" validate:"required"`
	Quote string `json:"quote" validate:"required"`
}

type registerPairResponse struct {
	Key   string `json:"key"`
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type placeOrderRequest struct {
	Participant string `json:"participant" validate:"required"`
	Side        string `json:"side" validate:"required,oneof=buy sell"`
	Price       uint64 `json:"price" validate:"required,gt=0"`
	Quantity    uint64 `json:"quantity" validate:"required,gt=0"`
}

type orderResponse struct {
	Participant string `json:"participant"`
	Side        string `json:"side"`
	Price       uint64 `json:"price"`
	Quantity    uint64 `json:"quantity"`
	PlacedAt    uint64 `json:"placed_at"`
}

// sideResponse mirrors the getSide query: three parallel arrays in priority
// order.
type sideResponse struct {
	Side         string   `json:"side"`
	Count        int      `json:"count"`
	Participants []string `json:"participants"`
	Prices       []uint64 `json:"prices"`
	Quantities   []uint64 `json:"quantities"`
}

type spreadResponse struct {
	Spread uint64 `json:"spread"`
}

type pairsResponse struct {
	PairsSupported int                    `json:"pairs_supported"`
	Pairs          []registerPairResponse `json:"pairs"`
}

type lookupResponse struct {
	Found bool   `json:"found"`
	Key   string `json:"key,omitempty"`
	Base  string `json:"base,omitempty"`
	Quote string `json:"quote,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
