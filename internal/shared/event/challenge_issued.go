package event

const ChallengeIssuedDestination string = "auth_challenge_issued"
const ChallengeIssuedConsumerNotification string = "auth_challenge_issued_notification"

type ChallengeIssuedMessage struct {
	AccountID int64  `json:"account_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Purpose   string `json:"purpose"`
	Code      string `json:"code"`
}
