package wire

// Outbound payloads.

// LoginRequest is the AUTH.LOGIN_REQUEST body.
type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ClientVersion string `json:"clientVersion"`
	RememberMe    bool   `json:"rememberMe"`
}

// RegisterRequest is the AUTH.REGISTER_REQUEST body.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// LogoutRequest is the AUTH.LOGOUT_REQUEST body.
type LogoutRequest struct{}

// GameModeQuickMatch is the only matchmaking mode the client requests.
const GameModeQuickMatch = "QUICK_MATCH"

// MatchRequest is the LOBBY.MATCH_REQUEST body.
type MatchRequest struct {
	GameMode  string `json:"gameMode"`
	Timestamp int64  `json:"timestamp"`
}

// MatchCancel is the LOBBY.MATCH_CANCEL body.
type MatchCancel struct{}

// CardPlayRequest is the GAME.CARD_PLAY_REQUEST body.
type CardPlayRequest struct {
	GameID      FlexString `json:"gameId"`
	RoundNumber int        `json:"roundNumber"`
	CardID      FlexString `json:"cardId"`
	Timestamp   int64      `json:"timestamp"`
}

// LeaderboardRequest is the LOBBY.LEADERBOARD_REQUEST body.
type LeaderboardRequest struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// Pong is the SYSTEM.PONG body.
type Pong struct{}

// Inbound payloads. Fields the server has sent under two names are both
// declared; the dispatch router picks one.

// User is the AUTH.LOGIN_SUCCESS body.
type User struct {
	UserID      FlexString `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName,omitempty"`
	Token       string     `json:"token,omitempty"`
	ExpiresAt   int64      `json:"expiresAt,omitempty"`
	Score       int        `json:"score,omitempty"`
	GamesPlayed int        `json:"gamesPlayed,omitempty"`
	GamesWon    int        `json:"gamesWon,omitempty"`
	Rank        int        `json:"rank,omitempty"`
}

// Card is a card as sent by the server. Suit is a one-letter code (H, D, C, S).
type Card struct {
	CardID      FlexString `json:"cardId"`
	Rank        FlexString `json:"rank"`
	Suit        string     `json:"suit"`
	Value       int        `json:"value,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

// PlayerRef names a player inside another payload.
type PlayerRef struct {
	UserID      FlexString `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName,omitempty"`
}

// MatchFound is the GAME.MATCH_FOUND body.
type MatchFound struct {
	MatchID             FlexString `json:"matchId"`
	OpponentUsername    string     `json:"opponentUsername,omitempty"`
	OpponentDisplayName string     `json:"opponentDisplayName,omitempty"`
	Opponent            *PlayerRef `json:"opponent,omitempty"`
}

// GameStart is the GAME.START body.
type GameStart struct {
	GameID                FlexString `json:"gameId,omitempty"`
	MatchID               FlexString `json:"matchId,omitempty"`
	YourPosition          int        `json:"yourPosition,omitempty"`
	PlayerPosition        int        `json:"playerPosition,omitempty"`
	OpponentUsername      string     `json:"opponentUsername,omitempty"`
	Opponent              *PlayerRef `json:"opponent,omitempty"`
	TotalRounds           int        `json:"totalRounds,omitempty"`
	InitialAvailableCards []Card     `json:"initialAvailableCards,omitempty"`
}

// RoundStart is the GAME.ROUND_START body.
type RoundStart struct {
	GameID            FlexString `json:"gameId,omitempty"`
	MatchID           FlexString `json:"matchId,omitempty"`
	RoundNumber       int        `json:"roundNumber"`
	TotalRounds       int        `json:"totalRounds,omitempty"`
	AvailableCards    []Card     `json:"availableCards,omitempty"`
	Hand              []Card     `json:"hand,omitempty"`
	DeadlineTimestamp int64      `json:"deadlineTimestamp,omitempty"`
	Deadline          int64      `json:"deadline,omitempty"`
	DurationMs        int64      `json:"durationMs,omitempty"`
	PlayerScore       *int       `json:"playerScore,omitempty"`
	OpponentScore     *int       `json:"opponentScore,omitempty"`
	Message           string     `json:"message,omitempty"`
}

// CardPlayResult is the GAME.CARD_PLAY_SUCCESS body.
type CardPlayResult struct {
	GameID         FlexString `json:"gameId,omitempty"`
	RoundNumber    int        `json:"roundNumber,omitempty"`
	CardID         FlexString `json:"cardId,omitempty"`
	AvailableCards []Card     `json:"availableCards,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// OpponentReady is the GAME.OPPONENT_READY body.
type OpponentReady struct {
	Status         string     `json:"status,omitempty"`
	PlayedCardID   FlexString `json:"playedCardId,omitempty"`
	AvailableCards []Card     `json:"availableCards,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// RoundReveal is the GAME.ROUND_REVEAL body.
type RoundReveal struct {
	GameID        FlexString `json:"gameId,omitempty"`
	RoundNumber   int        `json:"roundNumber,omitempty"`
	PlayerCard    *Card      `json:"playerCard,omitempty"`
	OpponentCard  *Card      `json:"opponentCard,omitempty"`
	Result        string     `json:"result,omitempty"`
	PointsEarned  int        `json:"pointsEarned,omitempty"`
	PlayerScore   int        `json:"playerScore"`
	OpponentScore int        `json:"opponentScore"`
	Message       string     `json:"message,omitempty"`
}

// GameEnd is the GAME.END body. Scores are per seat, not per viewer.
type GameEnd struct {
	MatchID      FlexString `json:"matchId,omitempty"`
	Player1Score int        `json:"player1Score"`
	Player2Score int        `json:"player2Score"`
	WinnerID     FlexString `json:"winnerId,omitempty"`
	Forfeited    bool       `json:"forfeited,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// OpponentLeft is the GAME.OPPONENT_LEFT body.
type OpponentLeft struct {
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Welcome is the SYSTEM.WELCOME body.
type Welcome struct {
	Message       string `json:"message,omitempty"`
	ServerVersion string `json:"serverVersion,omitempty"`
}

// LeaderboardEntry is one row of LOBBY.LEADERBOARD_RESPONSE.
type LeaderboardEntry struct {
	Rank        int        `json:"rank"`
	UserID      FlexString `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName,omitempty"`
	TotalWins   int        `json:"totalWins"`
	TotalGames  int        `json:"totalGames"`
	Score       int        `json:"score"`
	WinRate     float64    `json:"winRate"`
	LastPlayed  FlexString `json:"lastPlayed,omitempty"`
}

// LeaderboardResponse is the LOBBY.LEADERBOARD_RESPONSE body.
type LeaderboardResponse struct {
	Entries            []LeaderboardEntry `json:"entries"`
	TotalEntries       int                `json:"totalEntries"`
	CurrentPlayerEntry *LeaderboardEntry  `json:"currentPlayerEntry,omitempty"`
}
