package types

type MessageResponse struct {
	Message string `json:"message"`
}

type CheckoutSessionResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

type IsAuthenticatedResponse struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}

type WebhookAckResponse struct {
	Received bool `json:"received"`
}
