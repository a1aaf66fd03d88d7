// internal/notification/push.go

package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender is the slice of *messaging.Client the dispatcher needs
type FCMSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NewFCMClient builds a Firebase messaging client from a service account file
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	if credentialsFile == "" {
		return nil, ErrNotConfigured
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	return client, nil
}

// PushDispatcher sends events to the user's device via FCM
type PushDispatcher struct {
	client   FCMSender
	contacts ContactLookup
}

func NewPushDispatcher(client FCMSender, contacts ContactLookup) *PushDispatcher {
	return &PushDispatcher{client: client, contacts: contacts}
}

func (d *PushDispatcher) Name() string { return "push" }

func (d *PushDispatcher) Dispatch(ctx context.Context, ev Event) error {
	if d.client == nil {
		return ErrNotConfigured
	}
	contact, err := d.contacts.Contact(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if contact.PushToken == "" {
		return ErrNoContact
	}

	_, err = d.client.Send(ctx, pushMessage(contact.PushToken, ev))
	return err
}

func pushMessage(token string, ev Event) *messaging.Message {
	data := make(map[string]string, len(ev.Data)+2)
	for k, v := range ev.Data {
		data[k] = v
	}
	data["type"] = string(ev.Type)
	data["event_id"] = ev.ID

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: ev.Title,
			Body:  ev.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: string(ev.Type),
			Notification: &messaging.AndroidNotification{
				Sound:       "default",
				ClickAction: "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: ev.Title, Body: ev.Body},
					Sound: "default",
				},
			},
		},
	}
}
