package service

import (
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/config"
	"github.com/WovenTexLTD/line-lead-hub-sub001/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Submission *SubmissionService
	Dashboard  *DashboardService
	WorkOrder  *WorkOrderService
	BinCard    *BinCardService
	Export     *ExportService
}

// NewServices 创建服务集合。redis 与 MinIO 都允许缺省:
// rdb 为 nil 时跳过缓存, minio 未配置时报表不归档。
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端 (可选)
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO unavailable, report archiving disabled", zap.Error(err))
			minioClient = nil
		}
	}

	workOrder := NewWorkOrderService(repos.WorkOrder, repos.Submission, repos.Line, rdb, logger)

	return &Services{
		Submission: NewSubmissionService(repos.Submission, repos.WorkOrder, rdb, cfg, logger),
		Dashboard:  NewDashboardService(repos.Submission, repos.Line, logger),
		WorkOrder:  workOrder,
		BinCard:    NewBinCardService(repos.BinCard, logger),
		Export:     NewExportService(workOrder, repos.BinCard, minioClient, cfg.MinIO.Bucket, logger),
	}
}
