package notify

import (
	"crypto/tls"
	"strings"

	"github.com/mattn/go-xmpp"
	log "github.com/sirupsen/logrus"
)

// Config for the ops notification channel. Leaving the credentials empty
// disables notifications.
type Config struct {
	Host     string
	Jid      string
	Password string
	To       string
}

// Notifier posts one line route summaries to an ops XMPP contact. Routing
// never depends on it, a failed notification is only logged.
type Notifier struct {
	Config Config
}

func New(c Config) *Notifier {
	return &Notifier{Config: c}
}

// Enabled reports whether credentials are configured.
func (n *Notifier) Enabled() bool {
	return len(n.Config.Jid) > 0 && len(n.Config.Password) > 0 && len(n.Config.To) > 0
}

func serverName(jid string) string {
	if i := strings.Index(jid, "@"); i >= 0 {
		return jid[i+1:]
	}
	return jid
}

// Send posts the message. A disabled notifier drops it silently.
func (n *Notifier) Send(message string) error {
	if !n.Enabled() {
		return nil
	}

	host := n.Config.Host
	if len(host) == 0 {
		host = serverName(n.Config.Jid)
	}

	xmpp.DefaultConfig = tls.Config{
		InsecureSkipVerify: true,
	}

	options := xmpp.Options{
		Host:     host,
		User:     n.Config.Jid,
		Password: n.Config.Password,
		NoTLS:    true,
		StartTLS: true,
		Debug:    false,
		Session:  false,
		Status:   "xa",
	}

	talk, err := options.NewClient()
	if err != nil {
		return err
	}
	defer talk.Close()

	log.Debugf("Notify '%s'", n.Config.To)
	if _, err := talk.Send(xmpp.Chat{Remote: n.Config.To, Type: "chat", Text: message}); err != nil {
		return err
	}

	return nil
}
