package models

// Sales channel for the e-commerce department.
type Channel string

const (
	ChannelEC           Channel = "ec"
	ChannelPhone        Channel = "phone"
	ChannelFax          Channel = "fax"
	ChannelStoreCounter Channel = "store_counter"
)

// AllChannels is the fixed display order used by channel rollups.
var AllChannels = []Channel{ChannelEC, ChannelPhone, ChannelFax, ChannelStoreCounter}

type ComplaintType string

const (
	ComplaintTypeProduct  ComplaintType = "product"
	ComplaintTypeService  ComplaintType = "service"
	ComplaintTypeDelivery ComplaintType = "delivery"
	ComplaintTypeOther    ComplaintType = "other"
)

type CustomerType string

const (
	CustomerTypeNew      CustomerType = "new"
	CustomerTypeRepeat   CustomerType = "repeat"
	CustomerTypeWholesal CustomerType = "wholesale"
	CustomerTypeOther    CustomerType = "other"
)

type DepartmentType string

const (
	DepartmentTypeStore         DepartmentType = "store"
	DepartmentTypeManufacturing DepartmentType = "manufacturing"
	DepartmentTypeEcommerce     DepartmentType = "ecommerce"
	DepartmentTypeHeadOffice    DepartmentType = "head_office"
)

type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusClosed     ComplaintStatus = "closed"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "Create"
	AuditActionUpdate AuditAction = "Update"
	AuditActionDelete AuditAction = "Delete"
)

type OutboxPublishStatus string

const (
	OutboxPublishStatusPending   OutboxPublishStatus = "Pending"
	OutboxPublishStatusPublished OutboxPublishStatus = "Published"
	OutboxPublishStatusDead      OutboxPublishStatus = "Dead"
)

type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleExecutive  UserRole = "executive"
	UserRoleManager    UserRole = "manager"
	UserRoleStoreStaff UserRole = "store_staff"
)
