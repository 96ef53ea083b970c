package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cbodonnell/setgame/pkg/board"
	"github.com/cbodonnell/setgame/pkg/game"
	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/cbodonnell/setgame/pkg/state"
	"github.com/gorilla/mux"
)

// Game is the part of the dealer the API drives.
type Game interface {
	Board() *board.Board
	PlayerStatuses() []game.PlayerStatus
	Toggle(playerID int, slot int) error
	Terminate()
	Terminated() bool
}

type GameResponse struct {
	State      *state.GameSnapshot `json:"state"`
	Board      []board.Slot        `json:"board"`
	Players    []game.PlayerStatus `json:"players"`
	Terminated bool                `json:"terminated"`
}

func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func HandleGetGame(g Game, stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get game state: %v", err)
			http.Error(w, "Failed to get game state", http.StatusInternalServerError)
			return
		}

		response := GameResponse{
			State:      snapshot,
			Board:      g.Board().Snapshot(),
			Players:    g.PlayerStatuses(),
			Terminated: g.Terminated(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode game: %v", err)
			http.Error(w, "Failed to encode game", http.StatusInternalServerError)
			return
		}
	}
}

// HandleToggle forwards a human player's key press. The press is accepted,
// not applied: the player drops it while frozen or waiting for a verdict.
func HandleToggle(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		playerID, err := strconv.Atoi(vars["playerID"])
		if err != nil {
			http.Error(w, "Failed to parse playerID", http.StatusBadRequest)
			return
		}
		slot, err := strconv.Atoi(vars["slot"])
		if err != nil {
			http.Error(w, "Failed to parse slot", http.StatusBadRequest)
			return
		}

		if err := g.Toggle(playerID, slot); err != nil {
			switch {
			case game.IsUnknownPlayer(err):
				http.Error(w, "Player not found", http.StatusNotFound)
			case errors.Is(err, game.ErrComputerPlayer):
				http.Error(w, "Player is not human", http.StatusForbidden)
			case errors.Is(err, game.ErrInvalidSlot):
				http.Error(w, "Slot not on the board", http.StatusBadRequest)
			case game.IsTerminated(err):
				http.Error(w, "Game is over", http.StatusConflict)
			default:
				log.Error("failed to toggle slot %d for player %d: %v", slot, playerID, err)
				http.Error(w, "Failed to toggle slot", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func HandleTerminate(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Terminate()
		w.WriteHeader(http.StatusNoContent)
	}
}
