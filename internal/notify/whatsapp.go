package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"kupon-backend/internal/config"
	"kupon-backend/internal/live"
	"kupon-backend/internal/model"
	"kupon-backend/internal/repository"
)

// Manager keeps one WhatsApp client per merchant. Merchants link their own
// WhatsApp number (QR pairing) and reminder campaigns go out through it.
type Manager struct {
	Clients   map[string]*whatsmeow.Client
	Config    *config.Config
	Merchants *repository.MerchantRepository
	Hub       *live.Hub
	Container *sqlstore.Container
	mu        sync.RWMutex
}

func NewManager(cfg *config.Config, merchants *repository.MerchantRepository, hub *live.Hub) (*Manager, error) {
	dbLog := waLog.Stdout("Database", cfg.LogLevel, true)
	container, err := sqlstore.New(context.Background(), "postgres", cfg.DatabaseURL, dbLog)
	if err != nil {
		return nil, fmt.Errorf("init whatsapp store: %w", err)
	}

	return &Manager{
		Clients:   make(map[string]*whatsmeow.Client),
		Config:    cfg,
		Merchants: merchants,
		Hub:       hub,
		Container: container,
	}, nil
}

// normalizeJID turns whatever is stored on the merchant row into a valid JID
// that includes server (and device if present). types.ParseJID doesn't error
// on plain numbers, so we additionally ensure the user part is present.
func normalizeJID(raw string) (types.JID, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return types.JID{}, fmt.Errorf("empty JID string")
	}

	jid, err := types.ParseJID(cleaned)
	if err == nil && jid.User != "" {
		if jid.Server == "" {
			jid.Server = types.DefaultUserServer
		}
		return jid, nil
	}

	if !strings.Contains(cleaned, "@") {
		cleaned = cleaned + "@" + types.DefaultUserServer
	}

	jid, err = types.ParseJID(cleaned)
	if err != nil {
		return types.JID{}, err
	}
	if jid.User == "" {
		return types.JID{}, fmt.Errorf("failed to parse user part from JID: %s", raw)
	}
	return jid, nil
}

func (m *Manager) GetClient(merchantID string) *whatsmeow.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Clients[merchantID]
}

// Connect starts (or resumes) the merchant's WhatsApp client. A merchant
// with a stored JID reconnects to its existing device; otherwise a new
// device is created and the pairing QR is pushed over the live hub.
func (m *Manager) Connect(ctx context.Context, merchantID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.Clients[merchantID]; ok && client.IsConnected() {
		return string(model.ChannelStatusConnected), nil
	}

	merchant, err := m.Merchants.GetByID(ctx, merchantID)
	if err != nil {
		return "", err
	}
	if merchant == nil {
		return "", fmt.Errorf("merchant not found")
	}

	var deviceStore *store.Device
	if merchant.WAJid != "" {
		jid, err := normalizeJID(merchant.WAJid)
		if err != nil {
			log.Printf("Invalid stored JID for merchant %s (%s): %v", merchantID, merchant.WAJid, err)
		} else {
			deviceStore, err = m.Container.GetDevice(ctx, jid)
			if err != nil {
				log.Printf("Device lookup failed for %s: %v", jid.String(), err)
			}

			// If direct lookup failed (e.g. stored JID missing device ID),
			// search by user/server and persist the full JID for next time.
			if deviceStore == nil {
				devices, listErr := m.Container.GetAllDevices(ctx)
				if listErr != nil {
					log.Printf("Failed to list devices for merchant %s: %v", merchantID, listErr)
				} else {
					for _, dev := range devices {
						if dev.ID.User == jid.User && dev.ID.Server == jid.Server {
							deviceStore = dev
							if dev.ID.String() != merchant.WAJid {
								full := dev.ID.String()
								m.Merchants.UpdateChannel(ctx, merchantID, &full, merchant.WAStatus)
							}
							break
						}
					}
				}
			}
		}
	}

	if deviceStore == nil {
		// New device (QR mode)
		deviceStore = m.Container.NewDevice()
	}

	clientLog := waLog.Stdout("Client", m.Config.LogLevel, true)
	client := whatsmeow.NewClient(deviceStore, clientLog)

	client.AddEventHandler(func(evt interface{}) {
		m.handleEvent(merchantID, evt)
	})

	m.Clients[merchantID] = client

	if client.Store.ID == nil {
		// Not paired yet: surface the QR through the live feed.
		qrChan, _ := client.GetQRChannel(context.Background())
		if err := client.Connect(); err != nil {
			return "", err
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					m.Hub.SendToMerchant(merchantID, live.EventQRUpdate, map[string]interface{}{
						"qr_code":    evt.Code,
						"expires_in": 60,
					})
					m.Merchants.UpdateChannel(context.Background(), merchantID, nil, model.ChannelStatusQR)
				}
			}
		}()
		return string(model.ChannelStatusQR), nil
	}

	if err := client.Connect(); err != nil {
		return "", err
	}
	return string(model.ChannelStatusConnected), nil
}

func (m *Manager) handleEvent(merchantID string, evt interface{}) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		// Save the FULL JID string (User@Server:DeviceID) so reconnects find
		// the exact device.
		jid := v.ID.String()
		if err := m.Merchants.UpdateChannel(context.Background(), merchantID, &jid, model.ChannelStatusConnected); err != nil {
			log.Printf("Failed to persist pairing for merchant %s: %v", merchantID, err)
		}
		m.Hub.SendToMerchant(merchantID, live.EventChannelStatus, map[string]interface{}{
			"status": string(model.ChannelStatusConnected),
			"jid":    jid,
		})

	case *events.Connected:
		if err := m.Merchants.UpdateChannel(context.Background(), merchantID, nil, model.ChannelStatusConnected); err != nil {
			log.Printf("Failed to update channel status for merchant %s: %v", merchantID, err)
		}
		m.Hub.SendToMerchant(merchantID, live.EventChannelStatus, map[string]interface{}{
			"status": string(model.ChannelStatusConnected),
		})

	case *events.LoggedOut:
		empty := ""
		m.Merchants.UpdateChannel(context.Background(), merchantID, &empty, model.ChannelStatusDisconnected)
		m.Hub.SendToMerchant(merchantID, live.EventChannelStatus, map[string]interface{}{
			"status": string(model.ChannelStatusDisconnected),
		})

		m.mu.Lock()
		delete(m.Clients, merchantID)
		m.mu.Unlock()
	}
}

// SendText delivers one reminder message through the merchant's channel.
func (m *Manager) SendText(ctx context.Context, merchantID, phone, text string) error {
	client := m.GetClient(merchantID)
	if client == nil || !client.IsConnected() {
		return fmt.Errorf("whatsapp channel not connected for merchant %s", merchantID)
	}

	jid, err := normalizeJID(phone)
	if err != nil {
		return fmt.Errorf("invalid recipient number %q: %w", phone, err)
	}

	_, err = client.SendMessage(ctx, jid, &waProto.Message{
		Conversation: proto.String(text),
	})
	return err
}

func (m *Manager) disconnect(merchantID string, updateStatus bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.Clients[merchantID]; ok {
		client.Disconnect()
		delete(m.Clients, merchantID)
		if updateStatus {
			m.Merchants.UpdateChannel(context.Background(), merchantID, nil, model.ChannelStatusDisconnected)
		}
	}
}

// Disconnect is used for merchant-triggered channel stop; it updates DB status.
func (m *Manager) Disconnect(merchantID string) {
	m.disconnect(merchantID, true)
}

// Shutdown disconnects all active clients gracefully.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.Clients))
	for id := range m.Clients {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		// Do not overwrite status/JID during shutdown so auto-reconnect still works
		m.disconnect(id, false)
	}
}

// ReconnectAll reconnects every merchant with a stored JID, even if the
// status wasn't left as "connected" after an unclean shutdown.
func (m *Manager) ReconnectAll(ctx context.Context) {
	merchants, err := m.Merchants.GetWithChannel(ctx)
	if err != nil {
		log.Printf("Failed to fetch merchants for reconnect: %v", err)
		return
	}

	if len(merchants) == 0 {
		return
	}

	log.Printf("ReconnectAll: found %d merchant(s) with stored JID", len(merchants))

	for _, merchant := range merchants {
		go func(id string) {
			if _, err := m.Connect(context.Background(), id); err != nil {
				log.Printf("Failed to reconnect merchant %s: %v", id, err)
			}
		}(merchant.ID)
	}
}
