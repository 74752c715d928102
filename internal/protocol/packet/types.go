package packet

// SlotCount is the fixed number of seats serialized for every match.
const SlotCount = 16

// SlotHasPlayer is the union of slot status bits that carry an occupant id
// on the wire (not ready, ready, no map, playing, complete).
const SlotHasPlayer uint8 = 4 | 8 | 16 | 32 | 64

// Message is a chat message as carried by public and private message packets.
type Message struct {
	Sender   string
	Text     string
	Target   string
	SenderID int32
}

// SlotState is the serialized form of one match seat.
type SlotState struct {
	Status   uint8
	Team     uint8
	PlayerID int32
	Mods     uint32
}

// MatchState is the serialized form of a multiplayer match. Field order and
// presence rules follow the client: occupant ids are present only for slots
// with SlotHasPlayer bits, per-slot mods only when Freemod is set.
type MatchState struct {
	ID           uint16
	InProgress   bool
	Type         uint8
	Mods         uint32
	Name         string
	Password     string
	BeatmapTitle string
	BeatmapID    int32
	BeatmapMD5   string
	Slots        [SlotCount]SlotState
	HostID       int32
	Mode         uint8
	ScoringType  uint8
	TeamType     uint8
	Freemod      bool
	Seed         int32
}

// ScoreFrame is a snapshot of one player's live play progress. It is relayed
// between clients and never stored.
type ScoreFrame struct {
	Time         int32
	ID           uint8
	Count300     uint16
	Count100     uint16
	Count50      uint16
	CountGeki    uint16
	CountKatu    uint16
	CountMiss    uint16
	TotalScore   int32
	MaxCombo     uint16
	CurrentCombo uint16
	Perfect      bool
	CurrentHP    uint8
	TagByte      uint8
	ScoreV2      bool
	ComboPortion float64
	BonusPortion float64
}

// Presence is the roster entry for one player.
type Presence struct {
	UserID     int32
	Name       string
	UTCOffset  uint8
	Country    uint8
	Privileges uint8
	Mode       uint8
	Longitude  float32
	Latitude   float32
	Rank       int32
}

// Stats is the status and statistics block sent for one player.
type Stats struct {
	UserID      int32
	Action      uint8
	InfoText    string
	BeatmapMD5  string
	Mods        uint32
	Mode        uint8
	BeatmapID   int32
	RankedScore int64
	Accuracy    float32
	PlayCount   int32
	TotalScore  int64
	Rank        int32
	PP          int16
}
