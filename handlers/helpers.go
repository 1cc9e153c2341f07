package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/repositories"
	"github.com/pongarena/tournament-engine/services"
)

type jsonResponse map[string]interface{}

var errMissingRoom = errors.New("room name is required")

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusConflict, message)
}

func forbiddenResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusForbidden, message)
}

func serverErrorResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusInternalServerError,
		"the server encountered a problem and could not process your request")
}

// mapServiceErrorToHTTP преобразует доменные и сервисные ошибки в статусы.
// Нарушения инвариантов — 4xx, отказы персистентности — 5xx.
func mapServiceErrorToHTTP(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, models.ErrMatchNotFound):
		notFoundResponse(w)

	case errors.Is(err, models.ErrTournamentFull),
		errors.Is(err, models.ErrPlayerAlreadyRegistered),
		errors.Is(err, models.ErrDuplicateParticipantName),
		errors.Is(err, services.ErrPlayerInActiveTournament),
		errors.Is(err, repositories.ErrTournamentVersionConflict),
		errors.Is(err, repositories.ErrTournamentIDConflict):
		conflictResponse(w, err.Error())

	case errors.Is(err, models.ErrParticipantIDRequired),
		errors.Is(err, models.ErrParticipantNameInvalid),
		errors.Is(err, models.ErrParticipantTypeInvalid),
		errors.Is(err, models.ErrTournamentNameInvalid),
		errors.Is(err, models.ErrTournamentSizeInvalid),
		errors.Is(err, models.ErrTournamentVisibilityInvalid),
		errors.Is(err, models.ErrTournamentEnrollmentClosed),
		errors.Is(err, models.ErrParticipantNotRegistered),
		errors.Is(err, models.ErrTournamentCannotBeCancelled),
		errors.Is(err, models.ErrMatchAlreadyStarted),
		errors.Is(err, models.ErrMatchAlreadyFinished),
		errors.Is(err, models.ErrMatchNotReady),
		errors.Is(err, models.ErrInvalidMatchScore),
		errors.Is(err, models.ErrPlayerNotInMatch):
		badRequestResponse(w, err)

	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, err.Error())

	default:
		serverErrorResponse(w, err)
	}
}
