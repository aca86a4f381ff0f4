package controllers

import (
	"net/http"

	"github.com/gatepasshq/gatepass-backend/api/responses"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

// ProtectedTestData is the example gated resource behind the session guard.
func ProtectedTestData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, types.MessageResponse{Message: "Only paid members can access this message!"})
	}
}
