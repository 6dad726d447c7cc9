package server

import "time"

const (
	ProtocolVersion = 1

	writeWait         = 10 * time.Second
	tickRate          = 10 // ticks per second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	defaultWorldWidth  = 8000.0
	defaultWorldHeight = 8000.0

	baseSpeed       = 3.0 // world units per tick
	boostMultiplier = 2.0

	initialSegmentCount = 10
	minSegmentCount     = 5
	syncedSegmentCap    = 100

	boostDrainThreshold = 500 * time.Millisecond

	defaultTargetFoodCount = 400
	foodSpawnPerTick       = 10
	rareFoodChance         = 0.1
	rareFoodMaxValue       = 5
	eatClaimRadius         = 120.0
	corpseFoodMax          = 20
	corpseFoodJitter       = 12.0

	killRadius        = 16.0
	selfKillRadius    = 10.0
	selfCollisionSkip = 8

	defaultMaxClients       = 40
	defaultKeyframeInterval = 30
)
