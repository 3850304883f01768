package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	authrepo "moments-backend/internal/auth/repository"
	"moments-backend/internal/moment/store"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// MomentUpdate is the Pub/Sub message published when a moment changes on
// another device or by a collaborator.
type MomentUpdate struct {
	Email    string `json:"email"`
	MomentID string `json:"momentId,omitempty"`
	Action   string `json:"action,omitempty"`
}

// Service subscribes to the moment update topic and refreshes the affected
// user's store when a message arrives.
type Service struct {
	pubsubClient *pubsub.Client
	userRepo     authrepo.UserRepository
	manager      *store.Manager
	projectID    string
	topicName    string
	subName      string
}

func NewService(projectID, topicName string, userRepo authrepo.UserRepository, manager *store.Manager, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient: client,
		userRepo:     userRepo,
		manager:      manager,
		projectID:    projectID,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting realtime service with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

// Publish announces a moment change so other instances refresh their view.
// Delivery is best effort.
func (s *Service) Publish(ctx context.Context, update MomentUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("[PubSub] Failed to encode update: %v", err)
		return
	}

	topic := s.pubsubClient.Topic(s.topicName)
	result := topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		log.Printf("[PubSub] Failed to publish update: %v", err)
	}
}

func (s *Service) handleMessage(msg *pubsub.Message) {
	var update MomentUpdate
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		log.Printf("[PubSub] Failed to unmarshal update: %v", err)
		return
	}

	user, err := s.userRepo.FindByEmail(update.Email)
	if err != nil {
		log.Printf("[PubSub] Error finding user by email %s: %v", update.Email, err)
		return
	}
	if user == nil {
		log.Printf("[PubSub] User not found for email: %s", update.Email)
		return
	}

	// Only refresh stores that already exist; an inactive user has nothing
	// stale to repair.
	st := s.manager.Lookup(user.ID)
	if st == nil {
		return
	}

	log.Printf("[PubSub] Refreshing store for user %s (action: %s)", user.ID, update.Action)
	st.FetchMoments(user.ID, user.Email)
	st.FetchTasks(user.ID)
	st.FetchNotifications(user.Email)
}
