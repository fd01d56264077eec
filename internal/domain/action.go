package domain

// Action identifies an operation subject to a permission check.
type Action string

const (
	ActionCreateRoom Action = "createRoom"
	ActionCloseRoom  Action = "closeRoom"

	ActionApplyForMicrophone      Action = "applyForMicrophone"
	ActionAcceptMicrophoneRequest Action = "acceptMicrophoneRequest"
	ActionKickFromMicrophone      Action = "kickFromMicrophone"

	ActionUploadItem      Action = "uploadItem"
	ActionSetAuctionRules Action = "setAuctionRules"
	ActionStartAuction    Action = "startAuction"
	ActionPlaceBid        Action = "placeBid"
	ActionForceEndAuction Action = "forceEndAuction"

	ActionSendMessage Action = "sendMessage"
	ActionSendVoice   Action = "sendVoice"
)
