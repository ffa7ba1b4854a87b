package httpserver

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/robalobadob/geoquest/internal/game"
)

type leaderboardQuery struct {
	Mode string `query:"mode" enum:"country,city" required:"true"`
}

type gamePath struct {
	ID string `path:"id"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Twenty questions about a hidden country or city.")

	// GET /health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/health")
	getHealth.SetSummary("Health check")
	getHealth.SetDescription("Pings the database (and Redis when configured).")
	getHealth.AddRespStructure(map[string]checkResult{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealth.AddRespStructure(map[string]checkResult{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealth)

	// POST /users
	postUsers, _ := r.NewOperationContext(http.MethodPost, "/users")
	postUsers.SetSummary("Register player")
	postUsers.SetDescription("Creates the player if the username is new and returns a bearer token. Also sets the auth cookie.")
	postUsers.AddReqStructure(registerReq{})
	postUsers.AddRespStructure(registerRes{}, openapi.WithHTTPStatus(http.StatusOK))
	postUsers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postUsers)

	// POST /game/new
	postNew, _ := r.NewOperationContext(http.MethodPost, "/game/new")
	postNew.SetSummary("Start game")
	postNew.SetDescription("Picks a location the player has not seen recently. Requires Bearer token.")
	postNew.AddReqStructure(newGameReq{})
	postNew.AddRespStructure(game.View{}, openapi.WithHTTPStatus(http.StatusCreated))
	postNew.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postNew.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postNew.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postNew)

	// GET /game/{id}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/game/{id}")
	getGame.SetSummary("Get game")
	getGame.SetDescription("Current state and transcript. The location is included only once won.")
	getGame.AddReqStructure(gamePath{})
	getGame.AddRespStructure(game.View{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// POST /game/question
	postQuestion, _ := r.NewOperationContext(http.MethodPost, "/game/question")
	postQuestion.SetSummary("Ask question")
	postQuestion.SetDescription("Spends one of 20 questions. The answer is Yes, No or Maybe.")
	postQuestion.AddReqStructure(questionReq{})
	postQuestion.AddRespStructure(questionRes{}, openapi.WithHTTPStatus(http.StatusOK))
	postQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postQuestion)

	// POST /game/guess
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/game/guess")
	postGuess.SetSummary("Guess location")
	postGuess.SetDescription("Case-insensitive exact match on the name. Wrong guesses are free.")
	postGuess.AddReqStructure(guessReq{})
	postGuess.AddRespStructure(guessRes{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postGuess)

	// GET /leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/leaderboard")
	getBoard.SetSummary("Daily leaderboard")
	getBoard.SetDescription("Top 10 wins since midnight UTC, fastest first, then fewest questions.")
	getBoard.AddReqStructure(leaderboardQuery{})
	getBoard.AddRespStructure(game.Board{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getBoard)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
