package game

// View is the screen the client is on.
type View string

const (
	ViewAuth  View = "AUTH"
	ViewLobby View = "LOBBY"
	ViewGame  View = "GAME"
)

// Outcome is the result of a round or a game, from this client's seat.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
	OutcomeDraw Outcome = "DRAW"
)

// ParseOutcome normalizes a server result string. Unknown values map to
// OutcomeNone.
func ParseOutcome(raw string) Outcome {
	switch Outcome(raw) {
	case OutcomeWin, OutcomeLoss, OutcomeDraw:
		return Outcome(raw)
	case "LOSE":
		return OutcomeLoss
	case "TIE":
		return OutcomeDraw
	default:
		return OutcomeNone
	}
}

// DefaultTotalRounds is assumed when the server does not say.
const DefaultTotalRounds = 3

// Card is immutable once received. Suit is the raw server code.
type Card struct {
	ID          string `json:"cardId"`
	Rank        string `json:"rank"`
	Suit        string `json:"suit"`
	Value       int    `json:"value,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// User is the authenticated player's profile.
type User struct {
	ID          string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Token       string `json:"-"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
	Score       int    `json:"score"`
	GamesPlayed int    `json:"gamesPlayed"`
	GamesWon    int    `json:"gamesWon"`
	Rank        int    `json:"rank,omitempty"`
}

// Session binds a server session id to a user.
type Session struct {
	ID   string `json:"sessionId"`
	User User   `json:"user"`
}

// Match is one pairing of two sessions.
type Match struct {
	MatchID          string `json:"matchId,omitempty"`
	GameID           string `json:"gameId,omitempty"`
	OpponentUsername string `json:"opponentUsername,omitempty"`
	YourPosition     int    `json:"yourPosition,omitempty"`
	Found            bool   `json:"found"`
}

// Round holds round-scoped fields. ROUND_START replaces the whole value.
type Round struct {
	Number         int     `json:"roundNumber"`
	Total          int     `json:"totalRounds"`
	AvailableCards []Card  `json:"availableCards"`
	DeadlineMs     int64   `json:"deadline,omitempty"`
	SelectedCardID string  `json:"selectedCardId,omitempty"`
	SelectedCard   *Card   `json:"selectedCard,omitempty"`
	PlayPending    bool    `json:"playPending"`
	OpponentReady  bool    `json:"opponentReady"`
	PlayerCard     *Card   `json:"playerCard,omitempty"`
	OpponentCard   *Card   `json:"opponentCard,omitempty"`
	Result         Outcome `json:"result,omitempty"`
}

// FindCard returns the available card with the given id.
func (r Round) FindCard(id string) (Card, bool) {
	for _, c := range r.AvailableCards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// GameResult is the player-relative summary of a finished game.
type GameResult struct {
	Result        Outcome `json:"result"`
	PlayerScore   int     `json:"playerScore"`
	OpponentScore int     `json:"opponentScore"`
	WinnerID      string  `json:"winnerId,omitempty"`
	Forfeited     bool    `json:"forfeited,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName,omitempty"`
	TotalWins   int     `json:"totalWins"`
	TotalGames  int     `json:"totalGames"`
	Score       int     `json:"score"`
	WinRate     float64 `json:"winRate"`
}

// Leaderboard is the last leaderboard received.
type Leaderboard struct {
	Entries      []LeaderboardEntry `json:"entries"`
	TotalEntries int                `json:"totalEntries"`
	Me           *LeaderboardEntry  `json:"me,omitempty"`
}

// GameRecord is what gets persisted when a game ends.
type GameRecord struct {
	MatchID          string
	OpponentUsername string
	Result           Outcome
	PlayerScore      int
	OpponentScore    int
	Forfeited        bool
}

// State is the application state tree. It is owned by the actor loop; every
// other reader gets a copy and must treat slices and pointers as read-only.
type State struct {
	Connected   bool `json:"connected"`
	Unreachable bool `json:"unreachable"`

	View    View     `json:"view"`
	Session *Session `json:"session,omitempty"`

	Matchmaking bool  `json:"matchmaking"`
	Match       Match `json:"match"`
	Round       Round `json:"round"`

	PlayerScore   int         `json:"playerScore"`
	OpponentScore int         `json:"opponentScore"`
	GameResult    *GameResult `json:"gameResult,omitempty"`

	Leaderboard   *Leaderboard `json:"leaderboard,omitempty"`
	ServerWelcome string       `json:"serverWelcome,omitempty"`

	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Loading bool   `json:"loading"`

	// ReturnPending is set while a deferred return to the lobby is scheduled.
	// ReturnGen increments whenever that schedule is created or superseded;
	// timer events carry the generation they were started with.
	ReturnPending bool  `json:"-"`
	ReturnGen     int64 `json:"-"`
}

// Initial returns the state of a fresh client.
func Initial() State {
	return State{
		View:  ViewAuth,
		Round: Round{Total: DefaultTotalRounds},
	}
}

// SessionID returns the current session id or "".
func (s State) SessionID() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.ID
}

// UserID returns the logged-in user's id or "".
func (s State) UserID() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.User.ID
}
