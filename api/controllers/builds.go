package controllers

import (
	"net/http"

	"github.com/angelmondragon/pcforge-backend/api/responses"
	"github.com/angelmondragon/pcforge-backend/api/validators"
	"github.com/angelmondragon/pcforge-backend/internal/builds"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

// RecommendBuild always answers 200 with a build once the questionnaire is
// valid; recommender failures surface as source=fallback.
func RecommendBuild(svc builds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "build service unavailable"))
			return
		}
		var payload types.BuildRequirements
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		build, err := svc.Recommend(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, build)
	}
}

func GetBuild(svc builds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "build service unavailable"))
			return
		}
		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		build, err := svc.GetBuild(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, build)
	}
}
