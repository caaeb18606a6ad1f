// Package sender provides MessageSender implementations: SMTP email with
// retry, Telegram for the messenger channel, and a console sender for
// local runs without delivery credentials.
package sender
