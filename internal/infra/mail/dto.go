package mail

type RejectionEmailData struct {
	TemplateName string
	Language     string
	Reason       string
}

type AlertSender struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}
