package secrets

import (
	"context"
	"fmt"
	"os"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// KubernetesSource reads the key pair from two fields of a Kubernetes secret.
type KubernetesSource struct {
	Client      kubernetes.Interface
	Namespace   string
	Name        string
	KeyField    string
	SecretField string
}

func (k *KubernetesSource) Credentials(ctx context.Context) (Credentials, error) {
	secret, err := k.Client.CoreV1().Secrets(k.Namespace).Get(ctx, k.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return Credentials{}, fmt.Errorf("%w: %s/%s", ErrSecretNotFound, k.Namespace, k.Name)
		}
		return Credentials{}, fmt.Errorf("failed to get Kubernetes secret %s/%s: %w", k.Namespace, k.Name, err)
	}

	keyField := orDefault(k.KeyField, DefaultKeyField)
	secretField := orDefault(k.SecretField, DefaultSecretField)

	key, ok := secret.Data[keyField]
	if !ok {
		return Credentials{}, missingField(k.Name, keyField)
	}
	value, ok := secret.Data[secretField]
	if !ok {
		return Credentials{}, missingField(k.Name, secretField)
	}

	return Credentials{APIKey: string(key), APIKeySecret: string(value)}, nil
}

// NewKubernetesClient uses the in-cluster config inside a pod and the local
// kubeconfig elsewhere.
func NewKubernetesClient() (kubernetes.Interface, error) {
	var config *rest.Config
	var err error

	// Check if running inside a Kubernetes pod
	if _, exists := os.LookupEnv("KUBERNETES_SERVICE_HOST"); exists {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load in-cluster Kubernetes config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return clientset, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
