package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// StoreService handles store onboarding
type StoreService struct {
	stores  StoreRepository
	users   UserRepository
	storage ObjectStorage
	events  EventPublisher
	logger  *zap.Logger
}

func NewStoreService(stores StoreRepository, users UserRepository, storage ObjectStorage, events EventPublisher) *StoreService {
	return &StoreService{
		stores:  stores,
		users:   users,
		storage: storage,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// StoreRequest is the payload for creating a store. Optional fields are
// pointers.
type StoreRequest struct {
	StoreName        string                 `json:"storeName"`
	Owner            *uuid.UUID             `json:"owner"`
	ContactNumber    string                 `json:"contactNumber"`
	Email            *string                `json:"email"`
	Address          models.StoreAddress    `json:"address"`
	Geolocation      *models.GeoPoint       `json:"geolocation"`
	GSTIN            *string                `json:"gstin"`
	FSSAILicense     *string                `json:"fssaiLicense"`
	OnboardingStatus *string                `json:"onboardingStatus"`
	BankDetails      *models.BankDetails    `json:"bankDetails"`
	OperatingHours   *models.OperatingHours `json:"operatingHours"`
}

// UpdateStoreRequest is a partial store update; nil leaves a field alone.
type UpdateStoreRequest struct {
	StoreName        *string                `json:"storeName"`
	Owner            *uuid.UUID             `json:"owner"`
	ContactNumber    *string                `json:"contactNumber"`
	Email            *string                `json:"email"`
	Address          *models.StoreAddress   `json:"address"`
	Geolocation      *models.GeoPoint       `json:"geolocation"`
	GSTIN            *string                `json:"gstin"`
	FSSAILicense     *string                `json:"fssaiLicense"`
	OnboardingStatus *string                `json:"onboardingStatus"`
	BankDetails      *models.BankDetails    `json:"bankDetails"`
	OperatingHours   *models.OperatingHours `json:"operatingHours"`
}

func validateGeoPoint(g *models.GeoPoint) error {
	if len(g.Coordinates) != 2 {
		return apperror.Validation("geolocation.coordinates must be [lng, lat]")
	}
	lng, lat := g.Coordinates[0], g.Coordinates[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return apperror.Validation("geolocation.coordinates out of range")
	}
	g.Type = "Point"
	return nil
}

func trimAddress(a models.StoreAddress) models.StoreAddress {
	return models.StoreAddress{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
	}
}

// optionalString maps an empty or missing value to null.
func optionalString(s *string) null.String {
	t := trimmed(s)
	if t == nil || *t == "" {
		return null.String{}
	}
	return null.StringFrom(*t)
}

func parseStatus(s string) (models.OnboardingStatus, error) {
	status, err := models.ParseOnboardingStatus(strings.TrimSpace(s))
	if err != nil {
		return "", apperror.Validation(err.Error())
	}
	return status, nil
}

// CreateStore registers a store. Admins create stores for any existing owner;
// merchants register their own store, which starts Pending.
func (s *StoreService) CreateStore(ctx context.Context, p policy.Principal, req *StoreRequest) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.CreateStore")
	defer span.End()

	if err := policy.Require(p, policy.StoreCreate); err != nil {
		return nil, err
	}

	st := &models.Store{
		StoreName:      strings.TrimSpace(req.StoreName),
		ContactNumber:  strings.TrimSpace(req.ContactNumber),
		Email:          optionalString(req.Email),
		Address:        trimAddress(req.Address),
		Geolocation:    models.NewGeoPoint(0, 0),
		OperatingHours: models.OperatingHours{},
		OnboardedBy:    p.UserID,
	}
	st.GSTIN = optionalString(req.GSTIN)
	st.FSSAILicense = optionalString(req.FSSAILicense)
	st.DocumentUploads = models.DocumentUploads{}

	if st.StoreName == "" {
		return nil, apperror.Validation("storeName is required")
	}
	if st.ContactNumber == "" {
		return nil, apperror.Validation("contactNumber is required")
	}
	if !st.Address.Complete() {
		return nil, apperror.Validation("address street, city, state and pincode are required")
	}
	if req.Geolocation != nil {
		if err := validateGeoPoint(req.Geolocation); err != nil {
			return nil, err
		}
		st.Geolocation = *req.Geolocation
	}
	if req.BankDetails != nil {
		st.BankDetails = *req.BankDetails
	}
	if req.OperatingHours != nil {
		st.OperatingHours = *req.OperatingHours
	}

	status := models.OnboardingPending
	if policy.ScopeOf(p, policy.StoreCreate) == policy.ScopeAll {
		if req.Owner == nil || *req.Owner == uuid.Nil {
			return nil, apperror.Validation("owner is required")
		}
		if _, err := s.users.GetUserByID(ctx, *req.Owner); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Validation("owner does not exist")
			}
			return nil, err
		}
		st.OwnerID = *req.Owner
		if req.OnboardingStatus != nil && strings.TrimSpace(*req.OnboardingStatus) != "" {
			parsed, err := parseStatus(*req.OnboardingStatus)
			if err != nil {
				return nil, err
			}
			status = parsed
		}
	} else {
		owner := p.UserID
		if req.Owner != nil && *req.Owner != uuid.Nil {
			owner = *req.Owner
		}
		if err := policy.Authorize(p, policy.StoreCreate, owner); err != nil {
			return nil, err
		}
		st.OwnerID = owner
	}
	st.SetOnboardingStatus(status)

	if err := s.stores.CreateStore(ctx, st); err != nil {
		return nil, err
	}

	util.LoggerFromContext(ctx).Info("Store created",
		zap.String("store_id", st.ID.String()),
		zap.String("owner_id", st.OwnerID.String()))
	s.publishStoreEvent(ctx, models.EventTypeStoreCreated, p, st)

	return st, nil
}

// GetStore retrieves a store visible to the caller.
func (s *StoreService) GetStore(ctx context.Context, p policy.Principal, id uuid.UUID) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.GetStore")
	defer span.End()

	st, err := s.stores.GetStoreByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.StoreRead, st.OwnerID); err != nil {
		return nil, err
	}
	return st, nil
}

type ListStoresQuery struct {
	Status string
	ListQuery
}

// ListStores lists stores; merchants see only their own.
func (s *StoreService) ListStores(ctx context.Context, p policy.Principal, q ListStoresQuery) (*models.Page[models.Store], error) {
	ctx, span := util.StartSpan(ctx, "StoreService.ListStores")
	defer span.End()

	filter := models.StoreFilter{Pagination: q.pagination()}
	if strings.TrimSpace(q.Status) != "" {
		status, err := parseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	switch policy.ScopeOf(p, policy.StoreList) {
	case policy.ScopeAll:
	case policy.ScopeOwn:
		owner := p.UserID
		filter.OwnerID = &owner
	default:
		return nil, policy.Require(p, policy.StoreList)
	}

	stores, total, err := s.stores.ListStores(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(stores, filter.Pagination, total), nil
}

// UpdateStore applies a partial update. The owner cannot change.
func (s *StoreService) UpdateStore(ctx context.Context, p policy.Principal, id uuid.UUID, req *UpdateStoreRequest) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.UpdateStore")
	defer span.End()

	st, err := s.stores.GetStoreByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.StoreUpdate, st.OwnerID); err != nil {
		return nil, err
	}

	if req.Owner != nil && *req.Owner != st.OwnerID {
		return nil, apperror.Validation("owner cannot be changed")
	}
	if req.StoreName != nil {
		if st.StoreName = strings.TrimSpace(*req.StoreName); st.StoreName == "" {
			return nil, apperror.Validation("storeName must not be empty")
		}
	}
	if req.ContactNumber != nil {
		if st.ContactNumber = strings.TrimSpace(*req.ContactNumber); st.ContactNumber == "" {
			return nil, apperror.Validation("contactNumber must not be empty")
		}
	}
	if req.Email != nil {
		st.Email = optionalString(req.Email)
	}
	if req.Address != nil {
		if st.Address = trimAddress(*req.Address); !st.Address.Complete() {
			return nil, apperror.Validation("address street, city, state and pincode are required")
		}
	}
	if req.Geolocation != nil {
		if err := validateGeoPoint(req.Geolocation); err != nil {
			return nil, err
		}
		st.Geolocation = *req.Geolocation
	}
	if req.GSTIN != nil {
		st.GSTIN = optionalString(req.GSTIN)
	}
	if req.FSSAILicense != nil {
		st.FSSAILicense = optionalString(req.FSSAILicense)
	}
	if req.OnboardingStatus != nil {
		status, err := parseStatus(*req.OnboardingStatus)
		if err != nil {
			return nil, err
		}
		st.SetOnboardingStatus(status)
	}
	if req.BankDetails != nil {
		st.BankDetails = *req.BankDetails
	}
	if req.OperatingHours != nil {
		st.OperatingHours = *req.OperatingHours
	}

	if err := s.stores.UpdateStore(ctx, st); err != nil {
		return nil, err
	}
	s.publishStoreEvent(ctx, models.EventTypeStoreUpdated, p, st)

	return st, nil
}

// DeleteStore removes a store without orders.
func (s *StoreService) DeleteStore(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "StoreService.DeleteStore")
	defer span.End()

	st, err := s.stores.GetStoreByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.StoreDelete, st.OwnerID); err != nil {
		return err
	}
	if err := s.stores.DeleteStore(ctx, id); err != nil {
		return err
	}
	s.publishStoreEvent(ctx, models.EventTypeStoreDeleted, p, st)
	return nil
}

// UploadDocument stores a verification document and moves the store to
// Submitted. Nothing is written when the upload fails.
func (s *StoreService) UploadDocument(ctx context.Context, p policy.Principal, id uuid.UUID, docType string, file *FileUpload) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.UploadDocument")
	defer span.End()

	docType = strings.TrimSpace(docType)
	if docType == "" {
		return nil, apperror.Validation("docType is required")
	}
	if err := validateUpload(file, documentContentTypes); err != nil {
		util.DocumentUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	st, err := s.stores.GetStoreByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.StoreUploadDocument, st.OwnerID); err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, file.Data, fmt.Sprintf("stores/%s", st.ID), file.Filename, file.ContentType)
	if err != nil {
		util.DocumentUploadsTotal.WithLabelValues("failed").Inc()
		return nil, apperror.Internal(fmt.Errorf("failed to upload document: %w", err))
	}

	updated, err := s.stores.AppendStoreDocument(ctx, st.ID, models.DocumentUpload{DocType: docType, URL: url})
	if err != nil {
		return nil, err
	}
	util.DocumentUploadsTotal.WithLabelValues("success").Inc()

	event := &models.StoreDocumentUploadedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeStoreDocumentUploaded, p.UserID),
		StoreID:   updated.ID,
		DocType:   docType,
		URL:       url,
	}
	if err := s.events.PublishStoreDocumentUploaded(ctx, event); err != nil {
		s.logger.Error("Failed to publish StoreDocumentUploaded event", zap.Error(err))
	}

	return updated, nil
}

func (s *StoreService) publishStoreEvent(ctx context.Context, eventType string, p policy.Principal, st *models.Store) {
	event := &models.StoreEvent{
		BaseEvent:        models.NewBaseEvent(eventType, p.UserID),
		StoreID:          st.ID,
		OwnerID:          st.OwnerID,
		OnboardingStatus: st.OnboardingStatus,
	}
	if err := s.events.PublishStoreEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish store event",
			zap.String("event_type", eventType), zap.Error(err))
	}
}
